package authflow

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

type LogoutAPI interface {
	Logout(ctx context.Context) error
}

type SessionClearer interface {
	Clear(ctx context.Context) error
}

// Logout tells the backend the session is over, then drops the local token
// and shows the login screen. A failed server call does not keep the user
// signed in.
func Logout(ctx context.Context, a LogoutAPI, s SessionClearer, n nav.Navigator, l logging.Logger) error {
	if l == nil {
		l = logging.Nop()
	}
	if err := a.Logout(ctx); err != nil {
		l.Warn(ctx, "server logout failed", "error", err)
	}
	if err := s.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	n.Navigate(nav.RouteLogin)
	return nil
}
