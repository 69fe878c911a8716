package profile

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

type fakeAPI struct {
	Profile    models.Profile
	GetErr     error
	GetCalls   int
	UpdateErr  error
	LastUpdate models.ProfileUpdate
	Updates    int

	PasswordErr  error
	LastPassword models.PasswordChange

	UploadErr       error
	Uploads         int
	LastFilename    string
	LastContentType string
	LastUpload      []byte

	Setup      models.TwoFactorSetup
	EnableErr  error
	ConfirmErr error
	DisableErr error
	LastCode   string

	SuspendErr   error
	LastSuspend  string
	SuspendCalls int
}

func (f *fakeAPI) GetProfile(context.Context) (*models.Profile, error) {
	f.GetCalls++
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	p := f.Profile
	p.LoginHistory = append([]models.LoginEntry(nil), f.Profile.LoginHistory...)
	return &p, nil
}

// UpdateProfile applies the change to the served record like the backend.
func (f *fakeAPI) UpdateProfile(_ context.Context, u models.ProfileUpdate) (*models.Message, error) {
	f.Updates++
	f.LastUpdate = u
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	f.Profile.Username = u.Username
	f.Profile.Birthdate = u.Birthdate + "T00:00:00.000Z"
	return &models.Message{Message: "Profile updated"}, nil
}

func (f *fakeAPI) ChangePassword(_ context.Context, p models.PasswordChange) (*models.Message, error) {
	f.LastPassword = p
	if f.PasswordErr != nil {
		return nil, f.PasswordErr
	}
	return &models.Message{}, nil
}

func (f *fakeAPI) UploadPhoto(_ context.Context, filename, contentType string, data []byte) (*models.PhotoResponse, error) {
	f.Uploads++
	f.LastFilename, f.LastContentType, f.LastUpload = filename, contentType, data
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	return &models.PhotoResponse{ProfilePhoto: fmt.Sprintf("/uploads/%d-%s", f.Uploads, filename)}, nil
}

func (f *fakeAPI) Enable2FA(context.Context) (*models.TwoFactorSetup, error) {
	if f.EnableErr != nil {
		return nil, f.EnableErr
	}
	s := f.Setup
	return &s, nil
}

func (f *fakeAPI) Confirm2FA(_ context.Context, code string) (*models.Message, error) {
	f.LastCode = code
	return &models.Message{}, f.ConfirmErr
}

func (f *fakeAPI) Disable2FA(_ context.Context, code string) (*models.Message, error) {
	f.LastCode = code
	return &models.Message{}, f.DisableErr
}

func (f *fakeAPI) SuspendAccount(_ context.Context, password string) (*models.Message, error) {
	f.SuspendCalls++
	f.LastSuspend = password
	return &models.Message{}, f.SuspendErr
}

type fakeTokens struct {
	Tok string
	Clears int
}

func (f *fakeTokens) Token(context.Context) (string, error) { return f.Tok, nil }

func (f *fakeTokens) Clear(context.Context) error {
	f.Clears++
	f.Tok = ""
	return nil
}

type countingLock struct {
	Suspends, Resumes int
}

func (l *countingLock) Suspend() { l.Suspends++ }
func (l *countingLock) Resume()  { l.Resumes++ }
