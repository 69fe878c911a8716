package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/authflow"
	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/client/signup"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText, getPassword and getCode are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getCode       = GetCode
)

// report prints the user-facing text for err, or fallback.
func report(err error, fallback string) {
	printlnFn(common.UserMessage(err, fallback))
}

// Login prompts for credentials and, when the backend asks for it, a
// second-factor code. Codes are re-prompted until accepted or the attempt
// bound is used up.
func (a *App) Login(ctx context.Context) error {
	a.setRoute(nav.RouteLogin)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	flow := authflow.NewLoginFlow(a.api, a.sess, a, a.sched, a.log)
	if err := flow.SubmitCredentials(ctx, email, string(password)); err != nil {
		if flow.Message() != "" {
			printlnFn(flow.Message())
		} else {
			report(err, "Login failed. Please try again.")
		}
		return err
	}
	if m := flow.Message(); m != "" {
		printlnFn(m)
	}

	for flow.State() == authflow.AwaitingSecondFactor {
		code, err := getCode(a.reader, "Enter the 6-digit code from your authenticator app", a.out)
		if err != nil {
			return err
		}
		submitted, err := flow.CodeChanged(ctx, code)
		if !submitted {
			printlnFn("The code must have 6 digits.")
			continue
		}
		if err != nil {
			printlnFn(flow.Message())
			if errors.Is(err, authflow.ErrAttemptsExceeded) {
				return err
			}
		}
	}

	if flow.State() != authflow.Authenticated {
		return nil
	}
	printlnFn("Login successful")
	return a.Profile(ctx)
}

// Signup walks the three registration steps. Typing "back" at the first
// prompt of a step returns to the previous one.
func (a *App) Signup(ctx context.Context) error {
	a.setRoute(nav.RouteSignup)
	w := signup.New(a.api, a, a.sched, a.log)

	for !w.Done() {
		printlnFn(fmt.Sprintf("Step %d of 3", w.Step()))

		var err error
		switch w.Step() {
		case signup.StepNames:
			err = a.signupNames(w)
		case signup.StepContact:
			err = a.signupContact(w)
		case signup.StepPassword:
			err = a.signupPassword(ctx, w)
		}
		if errors.Is(err, errBack) {
			w.Back()
			continue
		}
		if err != nil {
			if msg := w.Error(); msg != "" {
				printlnFn(msg)
			}
			if !errors.Is(err, common.ErrValidation) {
				return err
			}
		}
	}

	printlnFn(w.Message())
	return nil
}

var errBack = errors.New("back")

func (a *App) signupNames(w *signup.Wizard) error {
	first, err := getSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}
	w.Edit(func(f *signup.Form) { f.FirstName, f.LastName = first, last })
	return w.Next()
}

func (a *App) signupContact(w *signup.Wizard) error {
	email, err := getSimpleText(a.reader, "Email (or 'back')", a.out)
	if err != nil {
		return err
	}
	if email == "back" {
		return errBack
	}
	birthdate, err := getSimpleText(a.reader, "Birthdate (YYYY-MM-DD)", a.out)
	if err != nil {
		return err
	}
	w.Edit(func(f *signup.Form) { f.Email, f.Birthdate = email, birthdate })
	return w.Next()
}

func (a *App) signupPassword(ctx context.Context, w *signup.Wizard) error {
	pw, err := getPassword(a.out, "Password (at least 8 characters, empty to go back)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return errBack
	}
	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	w.Edit(func(f *signup.Form) { f.Password, f.ConfirmPassword = string(pw), string(confirm) })
	err = w.Submit(ctx)
	w.Edit(func(f *signup.Form) { f.Password, f.ConfirmPassword = "", "" })
	return err
}

// Forgot requests a reset link for an email address.
func (a *App) Forgot(ctx context.Context) error {
	a.setRoute(nav.RouteForgotPassword)
	flow := authflow.NewForgotPasswordFlow(a.api, a, a.sched, a.log)

	email, err := getSimpleText(a.reader, "Enter your account email", a.out)
	if err != nil {
		return err
	}
	if err := flow.Submit(ctx, email); err != nil {
		if flow.Message() != "" {
			printlnFn(flow.Message())
		} else {
			report(err, "Failed to send reset link.")
		}
		return err
	}
	printlnFn(flow.Message())
	return nil
}

// Reset sets a new password using the token from a reset link.
func (a *App) Reset(ctx context.Context, token string) error {
	a.setRoute(nav.RouteResetPassword)
	flow := authflow.NewResetPasswordFlow(a.api, a, a.sched, a.log, token)

	pw, err := getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	confirm, err := getPassword(a.out, "Confirm new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := flow.Submit(ctx, string(pw), string(confirm)); err != nil {
		if flow.Message() != "" {
			printlnFn(flow.Message())
		} else {
			report(err, "Failed to reset password.")
		}
		return err
	}
	printlnFn(flow.Message())
	return nil
}

// Verify confirms an email address and counts down to the login screen.
func (a *App) Verify(ctx context.Context, token string) error {
	a.setRoute(nav.RouteVerifyEmail)
	flow := authflow.NewVerifyEmailFlow(a.api, a, a.sched, a.log)
	flow.OnTick(func(n int) {
		if n > 0 {
			a.notice(fmt.Sprintf("Redirecting to login in %d...", n))
		}
	})

	err := flow.Start(ctx, token)
	printlnFn(flow.Message())
	if err == nil {
		printlnFn(fmt.Sprintf("Redirecting to login in %d...", flow.Remaining()))
	}
	return err
}

// Logout ends the session on the server (best effort) and locally.
func (a *App) Logout(ctx context.Context) error {
	if err := authflow.Logout(ctx, a.api, a.sess, a, a.log); err != nil {
		report(err, "Logout failed.")
		return err
	}
	printlnFn("Logged out")
	return nil
}

// WhoAmI prints what the session token says about the signed-in account.
func (a *App) WhoAmI(ctx context.Context) error {
	tok, err := a.sess.Token(ctx)
	if err != nil {
		return err
	}
	if tok == "" {
		printlnFn("Not logged in")
		return session.ErrNoSession
	}

	if id, err := a.sess.DeviceID(ctx); err == nil {
		printlnFn("Device:  ", id)
	}
	if at, ok, err := a.sess.SignedInAt(ctx); err == nil && ok {
		printlnFn("Since:   ", at.Local().Format(time.DateTime))
	}

	c, err := session.Inspect(tok)
	if err != nil {
		printlnFn("Session token is opaque")
		return nil
	}
	printlnFn("Subject: ", c.Subject)
	printlnFn("Email:   ", common.NotAvailableIfEmpty(c.Email))
	printlnFn("Role:    ", common.NotAvailableIfEmpty(c.Role))
	if !c.ExpiresAt.IsZero() {
		state := "valid"
		if c.Expired(time.Now()) {
			state = "expired"
		}
		printlnFn("Expires: ", c.ExpiresAt.Local().Format(time.DateTime), "("+state+")")
	}
	return nil
}
