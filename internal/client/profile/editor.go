// Package profile implements the account page: profile fields, avatar and
// photo upload, password change, two-factor management and login history.
//
// The Editor owns one fetched profile record. Mutations refetch it, except
// for the two-factor flag and the photo URL which are mirrored locally
// after the server confirms.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/forms"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/timerx"
)

// MessageTTL is how long the profile-updated notice stays visible.
const MessageTTL = 3 * time.Second

var ErrNotLoaded = errors.New("profile not loaded")

type Tab int

const (
	TabProfile Tab = iota
	TabAvatar
	TabSecurity
	TabTwoFactor
)

var tabNames = [...]string{"profile", "avatar", "security", "2fa"}

func (t Tab) String() string {
	if t >= 0 && int(t) < len(tabNames) {
		return tabNames[t]
	}
	return fmt.Sprintf("tab(%d)", int(t))
}

// ParseTab accepts the names printed by Tab.String.
func ParseTab(s string) (Tab, bool) {
	for i, n := range tabNames {
		if n == s {
			return Tab(i), true
		}
	}
	return 0, false
}

// API is the subset of the backend used by the editor.
type API interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.Message, error)
	ChangePassword(ctx context.Context, p models.PasswordChange) (*models.Message, error)
	UploadPhoto(ctx context.Context, filename, contentType string, data []byte) (*models.PhotoResponse, error)
	Enable2FA(ctx context.Context) (*models.TwoFactorSetup, error)
	Confirm2FA(ctx context.Context, code string) (*models.Message, error)
	Disable2FA(ctx context.Context, code string) (*models.Message, error)
	SuspendAccount(ctx context.Context, password string) (*models.Message, error)
}

type Tokens interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type Options struct {
	// OutputDir receives rendered QR codes.
	OutputDir string
	// DevicePixelRatio scales crop renders.
	DevicePixelRatio float64
	// OutputSize is the logical edge of the rendered avatar.
	OutputSize int
	// PreviewWidth is the width the crop source is displayed at.
	PreviewWidth float64
	// Issuer names the account in authenticator apps when the backend
	// sends no provisioning URI.
	Issuer string
}

func (o Options) withDefaults() Options {
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.DevicePixelRatio <= 0 {
		o.DevicePixelRatio = 1
	}
	if o.OutputSize <= 0 {
		o.OutputSize = 150
	}
	if o.PreviewWidth <= 0 {
		o.PreviewWidth = 400
	}
	if o.Issuer == "" {
		o.Issuer = "GophAuth"
	}
	return o
}

// PasswordForm is held only until a successful change.
type PasswordForm struct {
	Current string
	New     string
	Confirm string
}

type passwordCheck struct {
	Current string `form:"currentPassword" validate:"required"`
	New     string `form:"newPassword" validate:"required"`
	Confirm string `form:"confirmPassword" validate:"eqfield=New"`
}

type fieldsCheck struct {
	Username  string `form:"username" validate:"required"`
	Birthdate string `form:"birthdate" validate:"omitempty,datetime=2006-01-02"`
}

type Editor struct {
	api    API
	tokens Tokens
	nav    nav.Navigator
	sched  timerx.Scheduler
	log    logging.Logger
	opts   Options

	mu           sync.Mutex
	profile      *models.Profile
	tab          Tab
	message      string
	msgGen       int
	errMsg       string
	passwords    PasswordForm
	provisioning *Provisioning
	disabling    bool
	crop         *CropSession
}

func NewEditor(a API, t Tokens, n nav.Navigator, s timerx.Scheduler, l logging.Logger, opts Options) *Editor {
	if l == nil {
		l = logging.Nop()
	}
	return &Editor{api: a, tokens: t, nav: n, sched: s, log: l.With("view", "profile"), opts: opts.withDefaults()}
}

// Mount loads the profile. Arriving straight from login fetches a second
// time so the newest login-history entry is included.
func (e *Editor) Mount(ctx context.Context, fromLogin bool) error {
	if err := e.Load(ctx); err != nil {
		return err
	}
	if fromLogin {
		return e.Load(ctx)
	}
	return nil
}

// Load fetches the profile. Without a session token it fails with
// session.ErrNoSession and never calls the backend.
func (e *Editor) Load(ctx context.Context) error {
	tok, err := e.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if tok == "" {
		return session.ErrNoSession
	}

	p, err := e.api.GetProfile(ctx)
	if err != nil {
		e.setError(common.UserMessage(err, "Failed to load profile."))
		return err
	}
	normalize(p)

	e.mu.Lock()
	e.profile = p
	e.mu.Unlock()
	return nil
}

func normalize(p *models.Profile) {
	p.Birthdate = models.NormalizeBirthdate(p.Birthdate)
	if p.Role == "" {
		p.Role = common.NotAvailable
	}
	if p.Status == "" {
		p.Status = common.NotAvailable
	}
}

// Profile returns a copy of the current record.
func (e *Editor) Profile() (models.Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return models.Profile{}, ErrNotLoaded
	}
	p := *e.profile
	p.LoginHistory = append([]models.LoginEntry(nil), e.profile.LoginHistory...)
	return p, nil
}

func (e *Editor) Tab() Tab {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tab
}

// SelectTab switches tabs without refetching.
func (e *Editor) SelectTab(t Tab) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tab = t
}

func (e *Editor) Message() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.message
}

func (e *Editor) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

func (e *Editor) setError(msg string) {
	e.mu.Lock()
	e.errMsg = msg
	e.mu.Unlock()
}

// notify shows msg and clears any error. With ttl > 0 the message is
// removed after ttl unless replaced in the meantime.
func (e *Editor) notify(msg string, ttl time.Duration) {
	e.mu.Lock()
	e.message = msg
	e.errMsg = ""
	e.msgGen++
	gen := e.msgGen
	e.mu.Unlock()

	if ttl <= 0 {
		return
	}
	e.sched.AfterFunc(ttl, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.msgGen == gen {
			e.message = ""
		}
	})
}

func (e *Editor) loaded() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return ErrNotLoaded
	}
	return nil
}

// UpdateFields saves username and birthdate, then refetches the record.
func (e *Editor) UpdateFields(ctx context.Context, username, birthdate string) error {
	if err := e.loaded(); err != nil {
		return err
	}
	err := forms.Struct(fieldsCheck{Username: username, Birthdate: birthdate}, forms.Messages{
		"username":  "Username is required.",
		"birthdate": "Birthdate must be a date (YYYY-MM-DD).",
	})
	if err != nil {
		e.setError(err.Error())
		return err
	}

	if _, err := e.api.UpdateProfile(ctx, models.ProfileUpdate{Username: username, Birthdate: birthdate}); err != nil {
		e.log.Warn(ctx, "profile update failed", "error", err)
		e.setError(common.UserMessage(err, "Failed to update profile."))
		return err
	}
	if err := e.Load(ctx); err != nil {
		return err
	}
	e.notify("Profile updated successfully!", MessageTTL)
	return nil
}

func (e *Editor) Passwords() PasswordForm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passwords
}

func (e *Editor) EditPasswords(fn func(*PasswordForm)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.passwords)
}

// ChangePassword submits the password form. New and confirmation must
// match before anything is sent. The form is cleared on success.
func (e *Editor) ChangePassword(ctx context.Context) error {
	f := e.Passwords()
	err := forms.Struct(passwordCheck(f), forms.Messages{
		"currentPassword": "Current password is required.",
		"newPassword":     "New password is required.",
		"confirmPassword": "New passwords do not match.",
	})
	if err != nil {
		e.setError(err.Error())
		return err
	}

	resp, err := e.api.ChangePassword(ctx, models.PasswordChange{CurrentPassword: f.Current, NewPassword: f.New})
	if err != nil {
		e.log.Warn(ctx, "password change failed", "error", err)
		e.setError(common.UserMessage(err, "Failed to change password."))
		return err
	}

	e.mu.Lock()
	e.passwords = PasswordForm{}
	e.mu.Unlock()

	e.notify(messageOr(resp, "Password changed successfully!"), 0)
	return nil
}

// LoginHistory returns the login history, most recent first.
func (e *Editor) LoginHistory() ([]models.LoginEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return nil, ErrNotLoaded
	}
	return e.profile.HistoryNewestFirst(), nil
}

// SuspendAccount suspends the account after re-entering the password. A
// wrong password comes back as an error without ending the session; on
// success the session is dropped.
func (e *Editor) SuspendAccount(ctx context.Context, password string) error {
	if password == "" {
		err := common.NewValidationError("password", "Password is required.")
		e.setError(err.Message)
		return err
	}
	if _, err := e.api.SuspendAccount(ctx, password); err != nil {
		e.log.Warn(ctx, "suspend failed", "error", err)
		e.setError(common.UserMessage(err, "Failed to suspend account."))
		return err
	}

	e.mu.Lock()
	e.profile = nil
	e.mu.Unlock()

	if err := e.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	e.log.Info(ctx, "account suspended")
	e.nav.Navigate(nav.RouteLogin)
	return nil
}
