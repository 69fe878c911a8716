package authflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/timerx"
)

const (
	// MaxCodeAttempts bounds second-factor submissions for one challenge.
	MaxCodeAttempts = 3
	// CodeLength is the number of digits that triggers auto-submit.
	CodeLength = 6
	// ChallengeResetDelay is how long the lock-out message stays before the
	// flow returns to the credentials form.
	ChallengeResetDelay = 2 * time.Second
)

var (
	ErrAttemptsExceeded = errors.New("too many failed attempts")
	ErrNoChallenge      = errors.New("no second-factor challenge in progress")
)

const (
	msgLoginFailed      = "Login failed. Please try again."
	msgUnexpected       = "Unexpected response from server."
	msgTooManyAttempts  = "Too many failed attempts. Please log in again."
	msgRequiredField    = "Please fill in this field."
	msgCodeFormat       = "Enter the 6-digit code from your authenticator app."
	msgAttemptsTemplate = "Invalid code. %d attempts remaining."
)

type State int

const (
	AwaitingCredentials State = iota
	AwaitingSecondFactor
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingCredentials:
		return "awaiting-credentials"
	case AwaitingSecondFactor:
		return "awaiting-second-factor"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// LoginAPI is the subset of the backend used by LoginFlow.
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Verify2FA(ctx context.Context, tempToken, code string) (*models.TokenResponse, error)
}

// TokenSink persists and drops the session token.
type TokenSink interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// LoginFlow drives credentials and the optional second-factor challenge.
type LoginFlow struct {
	api    LoginAPI
	tokens TokenSink
	reload nav.Reloader
	sched  timerx.Scheduler
	log    logging.Logger

	mu        sync.Mutex
	state     State
	tempToken string
	attempts  int
	message   string
}

func NewLoginFlow(a LoginAPI, t TokenSink, r nav.Reloader, s timerx.Scheduler, l logging.Logger) *LoginFlow {
	if l == nil {
		l = logging.Nop()
	}
	return &LoginFlow{api: a, tokens: t, reload: r, sched: s, log: l.With("flow", "login")}
}

func (f *LoginFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message is the text currently shown under the form, if any.
func (f *LoginFlow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Attempts returns the number of codes submitted for the current challenge.
func (f *LoginFlow) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *LoginFlow) setFailed(msg string) {
	f.mu.Lock()
	f.state = Failed
	f.message = msg
	f.mu.Unlock()
}

// SubmitCredentials posts the login form. Empty fields fail locally.
func (f *LoginFlow) SubmitCredentials(ctx context.Context, email, password string) error {
	switch {
	case email == "":
		return common.NewValidationError("email", msgRequiredField)
	case password == "":
		return common.NewValidationError("password", msgRequiredField)
	}

	f.mu.Lock()
	if f.state == AwaitingSecondFactor || f.state == Authenticated {
		f.mu.Unlock()
		return fmt.Errorf("login: unexpected state %s", f.state)
	}
	f.mu.Unlock()

	resp, err := f.api.Login(ctx, email, password)
	if err != nil {
		f.log.Warn(ctx, "login failed", "error", err)
		f.setFailed(common.UserMessage(err, msgLoginFailed))
		return err
	}

	switch {
	case resp.Requires2FA && resp.TempToken != "":
		f.mu.Lock()
		f.state = AwaitingSecondFactor
		f.tempToken = resp.TempToken
		f.attempts = 0
		f.message = resp.Message
		f.mu.Unlock()
		f.log.Debug(ctx, "second factor required")
		return nil

	case resp.Token != "":
		return f.establish(ctx, resp.Token)

	default:
		f.setFailed(msgUnexpected)
		return api.ErrUnexpectedResponse
	}
}

// CodeChanged is the auto-submit hook for the code input: it submits once
// the value holds exactly CodeLength digits and ignores anything else.
func (f *LoginFlow) CodeChanged(ctx context.Context, value string) (submitted bool, err error) {
	if !isCode(value) {
		return false, nil
	}
	return true, f.SubmitCode(ctx, value)
}

// SubmitCode verifies a second-factor code. The attempt counter is
// incremented before anything else and compared with MaxCodeAttempts: the
// submission that reaches the bound is not sent. It locks the challenge and
// a 2 second timer then returns the flow to the credentials form with the
// session cleared. Submissions made while locked return ErrAttemptsExceeded
// without a network call.
func (f *LoginFlow) SubmitCode(ctx context.Context, code string) error {
	if !isCode(code) {
		return common.NewValidationError("code", msgCodeFormat)
	}

	f.mu.Lock()
	if f.state == Failed && f.tempToken == "" && f.attempts >= MaxCodeAttempts {
		f.mu.Unlock()
		return ErrAttemptsExceeded
	}
	if f.state != AwaitingSecondFactor {
		f.mu.Unlock()
		return ErrNoChallenge
	}
	if f.attempts >= MaxCodeAttempts {
		f.mu.Unlock()
		return ErrAttemptsExceeded
	}
	f.attempts++
	n, temp := f.attempts, f.tempToken
	f.mu.Unlock()

	if n >= MaxCodeAttempts {
		f.lockOut(ctx)
		return ErrAttemptsExceeded
	}

	resp, err := f.api.Verify2FA(ctx, temp, code)
	if err != nil {
		f.mu.Lock()
		f.message = common.UserMessage(err, fmt.Sprintf(msgAttemptsTemplate, MaxCodeAttempts-n))
		f.mu.Unlock()
		f.log.Debug(ctx, "second factor rejected", "attempt", n)
		return err
	}
	if resp.Token == "" {
		f.mu.Lock()
		f.message = msgUnexpected
		f.mu.Unlock()
		return api.ErrUnexpectedResponse
	}
	return f.establish(ctx, resp.Token)
}

func (f *LoginFlow) lockOut(ctx context.Context) {
	f.mu.Lock()
	f.state = Failed
	f.tempToken = ""
	f.message = msgTooManyAttempts
	f.mu.Unlock()

	f.log.Info(ctx, "second factor locked out, returning to login")
	f.sched.AfterFunc(ChallengeResetDelay, f.resetChallenge)
}

func (f *LoginFlow) resetChallenge() {
	f.mu.Lock()
	if f.state != Failed {
		f.mu.Unlock()
		return
	}
	f.state = AwaitingCredentials
	f.attempts = 0
	f.message = ""
	f.mu.Unlock()

	ctx := context.Background()
	if err := f.tokens.Clear(ctx); err != nil {
		f.log.Error(ctx, "failed to clear session", "error", err)
	}
}

func (f *LoginFlow) establish(ctx context.Context, token string) error {
	if err := f.tokens.SetToken(ctx, token); err != nil {
		f.setFailed(msgLoginFailed)
		return fmt.Errorf("store session: %w", err)
	}

	f.mu.Lock()
	f.state = Authenticated
	f.tempToken = ""
	f.attempts = 0
	f.message = ""
	f.mu.Unlock()

	f.log.Info(ctx, "signed in")
	if f.reload != nil {
		f.reload.Reload()
	}
	return nil
}

// Restart drops any challenge and shows the credentials form again.
func (f *LoginFlow) Restart() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = AwaitingCredentials
	f.tempToken = ""
	f.attempts = 0
	f.message = ""
}

func isCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
