package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/profile"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// mountedEditor returns the profile editor, printing why it is unavailable.
func (a *App) mountedEditor(ctx context.Context) (*profile.Editor, error) {
	ed, err := a.profileEditor(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			printlnFn("Not logged in")
		} else {
			report(err, "Failed to load profile.")
		}
		return nil, err
	}
	return ed, nil
}

// outcome prints the editor's message or error after an action.
func outcome(ed *profile.Editor, err error) error {
	if err != nil {
		if msg := ed.Error(); msg != "" {
			printlnFn(msg)
		} else {
			report(err, "Something went wrong.")
		}
		return err
	}
	if msg := ed.Message(); msg != "" {
		printlnFn(msg)
	}
	return nil
}

// Profile prints the profile record.
func (a *App) Profile(ctx context.Context) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	ed.SelectTab(profile.TabProfile)
	p, err := ed.Profile()
	if err != nil {
		return err
	}

	twoFA := "disabled"
	if p.TwoFactorEnabled {
		twoFA = "enabled"
	}
	lastLogin := common.NotAvailable
	if p.LastLogin != nil {
		lastLogin = p.LastLogin.Local().Format(time.DateTime)
	}

	printlnFn("Username:  ", p.Username)
	printlnFn("Email:     ", p.Email)
	printlnFn("Birthdate: ", common.NotAvailableIfEmpty(p.Birthdate))
	printlnFn("Role:      ", p.Role)
	printlnFn("Status:    ", p.Status)
	printlnFn("Verified:  ", p.Verified)
	printlnFn("2FA:       ", twoFA)
	printlnFn("Last login:", lastLogin)
	printlnFn("Photo:     ", common.NotAvailableIfEmpty(p.ProfilePhoto))
	return nil
}

// Edit updates username and birthdate. Empty answers keep current values.
func (a *App) Edit(ctx context.Context) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	ed.SelectTab(profile.TabProfile)
	p, _ := ed.Profile()

	username, err := getSimpleText(a.reader, fmt.Sprintf("Username [%s]", p.Username), a.out)
	if err != nil {
		return err
	}
	if username == "" {
		username = p.Username
	}
	birthdate, err := getSimpleText(a.reader, fmt.Sprintf("Birthdate YYYY-MM-DD [%s]", p.Birthdate), a.out)
	if err != nil {
		return err
	}
	if birthdate == "" {
		birthdate = p.Birthdate
	}

	return outcome(ed, ed.UpdateFields(ctx, username, birthdate))
}

// Passwd changes the password.
func (a *App) Passwd(ctx context.Context) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	ed.SelectTab(profile.TabSecurity)

	prompts := []string{"Current password", "New password", "Confirm new password"}
	values := make([][]byte, 0, len(prompts))
	defer func() {
		for _, v := range values {
			common.WipeByteArray(v)
		}
	}()
	for _, p := range prompts {
		v, err := getPassword(a.out, p)
		if err != nil {
			return err
		}
		values = append(values, v)
	}

	ed.EditPasswords(func(f *profile.PasswordForm) {
		*f = profile.PasswordForm{Current: string(values[0]), New: string(values[1]), Confirm: string(values[2])}
	})
	err = ed.ChangePassword(ctx)
	ed.EditPasswords(func(f *profile.PasswordForm) { *f = profile.PasswordForm{} })
	return outcome(ed, err)
}

// Enable2FA enrolls an authenticator app.
func (a *App) Enable2FA(ctx context.Context) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	ed.SelectTab(profile.TabTwoFactor)
	if p, _ := ed.Profile(); p.TwoFactorEnabled {
		printlnFn("Two-factor authentication is already enabled.")
		return nil
	}

	prov, err := ed.Begin2FA(ctx)
	if err != nil {
		return outcome(ed, err)
	}
	if prov.QRPath != "" {
		printlnFn("Scan the QR code saved to", prov.QRPath)
	}
	printlnFn("Or enter it manually:")
	printlnFn(prov.Description())

	for {
		code, err := getCode(a.reader, "Enter the 6-digit code to confirm (empty to cancel)", a.out)
		if err != nil {
			return err
		}
		if code == "" {
			printlnFn("Two-factor setup cancelled.")
			return nil
		}
		err = ed.Confirm2FA(ctx, code)
		if err == nil || !errors.Is(err, common.ErrValidation) {
			return outcome(ed, err)
		}
		printlnFn(ed.Error())
	}
}

// Disable2FA turns two-factor authentication off after a confirmation code.
func (a *App) Disable2FA(ctx context.Context) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	ed.SelectTab(profile.TabTwoFactor)
	if err := ed.StartDisable2FA(); err != nil {
		printlnFn("Two-factor authentication is not enabled.")
		return err
	}

	code, err := getCode(a.reader, "Enter a code from your authenticator to disable 2FA (empty to cancel)", a.out)
	if err != nil || code == "" {
		ed.CancelDisable2FA()
		printlnFn("Two-factor authentication stays enabled.")
		return err
	}
	err = ed.ConfirmDisable2FA(ctx, code)
	if err != nil {
		ed.CancelDisable2FA()
	}
	return outcome(ed, err)
}

// Avatar uploads one of the built-in avatars.
func (a *App) Avatar(ctx context.Context) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	ed.SelectTab(profile.TabAvatar)

	list := profile.Avatars()
	for i, av := range list {
		printlnFn(fmt.Sprintf("  %d) %s", i+1, av.Name))
	}
	answer, err := getSimpleText(a.reader, "Choose an avatar", a.out)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(list) {
		printlnFn("Please choose a number between 1 and", len(list))
		return fmt.Errorf("invalid avatar %q", answer)
	}
	return outcome(ed, ed.ChooseAvatar(ctx, n-1))
}

// History lists logins, newest first.
func (a *App) History(ctx context.Context) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	h, err := ed.LoginHistory()
	if err != nil {
		return err
	}
	if len(h) == 0 {
		printlnFn("No login history.")
		return nil
	}
	for _, e := range h {
		printlnFn(strings.Join([]string{
			e.Time.Local().Format(time.DateTime),
			common.NotAvailableIfEmpty(e.IP),
			common.NotAvailableIfEmpty(e.Location),
			common.NotAvailableIfEmpty(e.Device),
		}, "  "))
	}
	return nil
}

// Suspend suspends the account after re-entering the password.
func (a *App) Suspend(ctx context.Context) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	confirm, err := getSimpleText(a.reader, "Suspend your account? Type 'yes' to continue", a.out)
	if err != nil {
		return err
	}
	if confirm != "yes" {
		printlnFn("Cancelled.")
		return nil
	}
	pw, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := ed.SuspendAccount(ctx, string(pw)); err != nil {
		return outcome(ed, err)
	}
	printlnFn("Account suspended.")
	return nil
}
