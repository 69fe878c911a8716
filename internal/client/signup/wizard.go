// Package signup implements the three-step account registration wizard.
//
// Step boundaries are validation gates: Next only advances when the
// current step's fields pass. The direction flag records which way the
// last transition went and has no effect on validation.
package signup

import (
	"context"
	"fmt"
	"net/http"
	"strings"
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
	StepNames    Step = 1
	StepContact  Step = 2
	StepPassword Step = 3

	// DefaultRole is assigned to every self-registered account.
	DefaultRole = "user"

	RedirectDelay = 3 * time.Second
)

const (
	msgNames          = "First and last name must be at least 2 characters and contain only letters, spaces, hyphens or apostrophes."
	msgContactMissing = "Email and birthdate are required."
	msgEmailFormat    = "Please enter a valid email address."
	msgPasswordLength = "Password must be at least 8 characters long."
	msgPasswordMatch  = "Passwords do not match."
	msgRegistered     = "Registration successful! Please check your email to verify your account."
	msgFailed         = "Registration failed. Please try again."
)

type Step int

type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Form holds everything entered across the three steps.
type Form struct {
	FirstName       string
	LastName        string
	Email           string
	Birthdate       string
	Password        string
	ConfirmPassword string
}

type namesStep struct {
	FirstName string `form:"firstName" validate:"min=2,personname"`
	LastName  string `form:"lastName" validate:"min=2,personname"`
}

type contactStep struct {
	Email     string `form:"email" validate:"required,email"`
	Birthdate string `form:"birthdate" validate:"required"`
}

type passwordStep struct {
	Password        string `form:"password" validate:"min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
}

type RegisterAPI interface {
	Register(ctx context.Context, r models.Registration) (int, *models.Message, error)
}

type Wizard struct {
	api   RegisterAPI
	nav   nav.Navigator
	sched timerx.Scheduler
	log   logging.Logger

	mu      sync.Mutex
	step    Step
	dir     Direction
	form    Form
	err     string
	message string
	done    bool
}

func New(a RegisterAPI, n nav.Navigator, s timerx.Scheduler, l logging.Logger) *Wizard {
	if l == nil {
		l = logging.Nop()
	}
	return &Wizard{api: a, nav: n, sched: s, log: l.With("flow", "signup"), step: StepNames}
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Direction() Direction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Error is the inline error of the current step.
func (w *Wizard) Error() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Message is the success text shown after registration.
func (w *Wizard) Message() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message
}

func (w *Wizard) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

func (w *Wizard) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Edit applies fn to the entered values.
func (w *Wizard) Edit(fn func(*Form)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.form)
}

func (w *Wizard) checkStep(s Step, f Form) error {
	switch s {
	case StepNames:
		return forms.Struct(namesStep{FirstName: f.FirstName, LastName: f.LastName}, forms.Messages{
			"firstName": msgNames,
			"lastName":  msgNames,
		})
	case StepContact:
		return forms.Struct(contactStep{Email: f.Email, Birthdate: f.Birthdate}, forms.Messages{
			"email.required": msgContactMissing,
			"email.email":    msgEmailFormat,
			"birthdate":      msgContactMissing,
		})
	case StepPassword:
		return forms.Struct(passwordStep{Password: f.Password, ConfirmPassword: f.ConfirmPassword}, forms.Messages{
			"password":        msgPasswordLength,
			"confirmPassword": msgPasswordMatch,
		})
	}
	return fmt.Errorf("signup: unknown step %d", s)
}

// Next validates the current step and advances when it passes. On the
// last step it returns nil without moving; use Submit.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkStep(w.step, w.form); err != nil {
		w.err = err.Error()
		return err
	}
	w.err = ""
	if w.step < StepPassword {
		w.step++
		w.dir = Forward
	}
	return nil
}

// Back returns to the previous step without validation.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepNames {
		w.step--
		w.dir = Backward
		w.err = ""
	}
}

// Submit posts the registration from the last step. Only 201 Created
// counts as success; anything else is shown inline and the wizard stays on
// the password step.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.step != StepPassword {
		w.mu.Unlock()
		return fmt.Errorf("signup: submit from step %d", w.step)
	}
	f := w.form
	if err := w.checkStep(StepPassword, f); err != nil {
		w.err = err.Error()
		w.mu.Unlock()
		return err
	}
	w.mu.Unlock()

	reg := models.Registration{
		Name:      strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName),
		Email:     f.Email,
		Password:  f.Password,
		Role:      DefaultRole,
		Birthdate: f.Birthdate,
	}

	status, msg, err := w.api.Register(ctx, reg)
	var text string
	switch {
	case err != nil:
		text = common.UserMessage(err, msgFailed)
	case status != http.StatusCreated:
		err = fmt.Errorf("signup: unexpected status %d", status)
		text = msgFailed
		if msg != nil && msg.Message != "" {
			text = msg.Message
		}
	}
	if err != nil {
		w.log.Warn(ctx, "registration failed", "status", status, "error", err)
		w.mu.Lock()
		w.err = text
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	w.err = ""
	w.done = true
	w.message = msgRegistered
	w.mu.Unlock()

	w.log.Info(ctx, "account registered")
	w.sched.AfterFunc(RedirectDelay, func() { w.nav.Navigate(nav.RouteLogin) })
	return nil
}
