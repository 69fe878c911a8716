package authflow

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/timerx"
)

// VerifyCountdown is the number of one-second ticks shown before the
// redirect to login.
const VerifyCountdown = 3

type VerifyAPI interface {
	VerifyEmail(ctx context.Context, token string) (*models.Message, error)
}

type VerifyState int

const (
	Verifying VerifyState = iota
	Verified
	VerifyFailed
)

// VerifyEmailFlow confirms an address with the token from the emailed link.
// There is no retry: a failure is final for this visit.
type VerifyEmailFlow struct {
	api   VerifyAPI
	nav   nav.Navigator
	sched timerx.Scheduler
	log   logging.Logger

	mu        sync.Mutex
	state     VerifyState
	message   string
	remaining int
	onTick    func(remaining int)
}

func NewVerifyEmailFlow(a VerifyAPI, n nav.Navigator, s timerx.Scheduler, l logging.Logger) *VerifyEmailFlow {
	if l == nil {
		l = logging.Nop()
	}
	return &VerifyEmailFlow{api: a, nav: n, sched: s, log: l.With("flow", "verify-email")}
}

// OnTick registers a callback receiving the seconds left before redirect,
// including the final 0.
func (f *VerifyEmailFlow) OnTick(fn func(remaining int)) {
	f.mu.Lock()
	f.onTick = fn
	f.mu.Unlock()
}

func (f *VerifyEmailFlow) State() VerifyState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *VerifyEmailFlow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Remaining returns the seconds left on the redirect countdown.
func (f *VerifyEmailFlow) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remaining
}

// Start runs the single verification request.
func (f *VerifyEmailFlow) Start(ctx context.Context, token string) error {
	if token == "" {
		f.finish(VerifyFailed, "No verification token provided.")
		return common.NewValidationError("token", "No verification token provided.")
	}

	resp, err := f.api.VerifyEmail(ctx, token)
	if err != nil {
		f.log.Warn(ctx, "email verification failed", "error", err)
		f.finish(VerifyFailed, common.UserMessage(err, "Email verification failed."))
		return err
	}

	msg := resp.Message
	if msg == "" {
		msg = "Email verified successfully."
	}
	f.mu.Lock()
	f.state = Verified
	f.message = msg
	f.remaining = VerifyCountdown
	f.mu.Unlock()

	f.sched.AfterFunc(time.Second, f.tick)
	return nil
}

func (f *VerifyEmailFlow) finish(s VerifyState, msg string) {
	f.mu.Lock()
	f.state = s
	f.message = msg
	f.mu.Unlock()
}

func (f *VerifyEmailFlow) tick() {
	f.mu.Lock()
	if f.remaining > 0 {
		f.remaining--
	}
	left, cb := f.remaining, f.onTick
	f.mu.Unlock()

	if cb != nil {
		cb(left)
	}
	if left > 0 {
		f.sched.AfterFunc(time.Second, f.tick)
		return
	}
	f.nav.Navigate(nav.RouteLogin)
}
