package authflow

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

type fakeAPI struct {
	mu sync.Mutex

	LoginResp *models.LoginResponse
	LoginErr  error

	VerifyResps []*models.TokenResponse
	VerifyErrs  []error

	MsgResp   *models.Message
	MsgErr    error
	LogoutErr error

	LoginCalls, VerifyCalls, ForgotCalls, ResetCalls, VerifyEmailCalls, LogoutCalls int

	LastEmail, LastPassword, LastTempToken, LastCode, LastToken, LastNewPassword string
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*models.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastEmail, f.LastPassword = email, password
	return f.LoginResp, f.LoginErr
}

// Verify2FA replays VerifyResps/VerifyErrs in order, repeating the last one.
func (f *fakeAPI) Verify2FA(_ context.Context, tempToken, code string) (*models.TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.VerifyCalls
	f.VerifyCalls++
	f.LastTempToken, f.LastCode = tempToken, code

	var (
		resp *models.TokenResponse
		err  error
	)
	if n := len(f.VerifyResps); n > 0 {
		resp = f.VerifyResps[min(i, n-1)]
	}
	if n := len(f.VerifyErrs); n > 0 {
		err = f.VerifyErrs[min(i, n-1)]
	}
	return resp, err
}

func (f *fakeAPI) ForgotPassword(_ context.Context, email string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ForgotCalls++
	f.LastEmail = email
	return f.MsgResp, f.MsgErr
}

func (f *fakeAPI) ResetPassword(_ context.Context, token, newPassword string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResetCalls++
	f.LastToken, f.LastNewPassword = token, newPassword
	return f.MsgResp, f.MsgErr
}

func (f *fakeAPI) VerifyEmail(_ context.Context, token string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VerifyEmailCalls++
	f.LastToken = token
	return f.MsgResp, f.MsgErr
}

func (f *fakeAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	return f.LogoutErr
}

type fakeTokens struct {
	Token    string
	SetErr   error
	Sets     int
	Clears   int
	ClearErr error
}

func (f *fakeTokens) SetToken(_ context.Context, token string) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Sets++
	f.Token = token
	return nil
}

func (f *fakeTokens) Clear(context.Context) error {
	f.Clears++
	f.Token = ""
	return f.ClearErr
}
