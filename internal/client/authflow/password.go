package authflow

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/forms"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/timerx"
)

const (
	ForgotRedirectDelay = 3 * time.Second
	ResetRedirectDelay  = 5 * time.Second
)

type PasswordAPI interface {
	ForgotPassword(ctx context.Context, email string) (*models.Message, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*models.Message, error)
}

// outcome is the shared result state of the one-shot request forms.
type outcome struct {
	mu        sync.Mutex
	succeeded bool
	message   string
}

func (o *outcome) set(ok bool, msg string) {
	o.mu.Lock()
	o.succeeded, o.message = ok, msg
	o.mu.Unlock()
}

// Succeeded reports whether the success overlay is showing.
func (o *outcome) Succeeded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.succeeded
}

func (o *outcome) Message() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.message
}

func redirectToLogin(n nav.Navigator) func() {
	return func() { n.Navigate(nav.RouteLogin) }
}

// ForgotPasswordFlow requests a reset link by email.
type ForgotPasswordFlow struct {
	outcome
	api   PasswordAPI
	nav   nav.Navigator
	sched timerx.Scheduler
	log   logging.Logger
}

func NewForgotPasswordFlow(a PasswordAPI, n nav.Navigator, s timerx.Scheduler, l logging.Logger) *ForgotPasswordFlow {
	if l == nil {
		l = logging.Nop()
	}
	return &ForgotPasswordFlow{api: a, nav: n, sched: s, log: l.With("flow", "forgot-password")}
}

func (f *ForgotPasswordFlow) Submit(ctx context.Context, email string) error {
	err := forms.Var("email", email, "required,email", forms.Messages{
		"email": "Please enter a valid email address.",
	})
	if err != nil {
		return err
	}

	resp, err := f.api.ForgotPassword(ctx, email)
	if err != nil {
		f.log.Warn(ctx, "reset link request failed", "error", err)
		f.set(false, common.UserMessage(err, "Failed to send reset link. Please try again."))
		return err
	}

	msg := resp.Message
	if msg == "" {
		msg = "Password reset link sent. Check your email."
	}
	f.set(true, msg)
	f.sched.AfterFunc(ForgotRedirectDelay, redirectToLogin(f.nav))
	return nil
}

type resetForm struct {
	NewPassword     string `form:"newPassword" validate:"min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=NewPassword"`
}

// ResetPasswordFlow consumes the token from a reset link.
type ResetPasswordFlow struct {
	outcome
	api   PasswordAPI
	nav   nav.Navigator
	sched timerx.Scheduler
	log   logging.Logger
	token string
}

func NewResetPasswordFlow(a PasswordAPI, n nav.Navigator, s timerx.Scheduler, l logging.Logger, token string) *ResetPasswordFlow {
	if l == nil {
		l = logging.Nop()
	}
	return &ResetPasswordFlow{api: a, nav: n, sched: s, log: l.With("flow", "reset-password"), token: token}
}

// Submit checks the two passwords locally and posts them with the token.
// A mismatch never reaches the network.
func (f *ResetPasswordFlow) Submit(ctx context.Context, newPassword, confirm string) error {
	if f.token == "" {
		return common.NewValidationError("token", "Invalid or missing reset token.")
	}
	err := forms.Struct(resetForm{NewPassword: newPassword, ConfirmPassword: confirm}, forms.Messages{
		"newPassword":     "Password must be at least 8 characters long.",
		"confirmPassword": "Passwords do not match.",
	})
	if err != nil {
		return err
	}

	resp, err := f.api.ResetPassword(ctx, f.token, newPassword)
	if err != nil {
		f.log.Warn(ctx, "password reset failed", "error", err)
		f.set(false, common.UserMessage(err, "Failed to reset password. Please try again."))
		return err
	}

	msg := resp.Message
	if msg == "" {
		msg = "Password has been reset. Redirecting to login."
	}
	f.set(true, msg)
	f.sched.AfterFunc(ResetRedirectDelay, redirectToLogin(f.nav))
	return nil
}
