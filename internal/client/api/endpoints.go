package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

const (
	PathLogin          = "/auth/login"
	PathVerify2FA      = "/auth/verify-2fa"
	PathRegister       = "/auth/register"
	PathVerifyEmail    = "/auth/verify-email"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password"
	PathLogout         = "/auth/logout"
	PathEnable2FA      = "/auth/2fa/enable"
	PathConfirm2FA     = "/auth/2fa/verify"
	PathDisable2FA     = "/auth/2fa/disable"
	PathProfile        = "/profile"
	PathUpdateProfile  = "/profile/update"
	PathChangePassword = "/profile/change-password"
	PathUploadPhoto    = "/profile/upload-photo"
	PathSuspend        = "/profile/suspend"
)

func (c *Client) call(ctx context.Context, method, path string, body any, headers http.Header, out any) error {
	resp, err := c.Do(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, PathLogin, body, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify2FA answers a login challenge. The temporary token authenticates
// the call instead of the (absent) session token.
func (c *Client) Verify2FA(ctx context.Context, tempToken, code string) (*models.TokenResponse, error) {
	var out models.TokenResponse
	h := http.Header{}
	h.Set("Authorization", "Bearer "+tempToken)
	if err := c.call(ctx, http.MethodPost, PathVerify2FA, map[string]string{"token": code}, h, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register returns the HTTP status so callers can insist on 201 Created.
func (c *Client) Register(ctx context.Context, r models.Registration) (int, *models.Message, error) {
	resp, err := c.Do(ctx, http.MethodPost, PathRegister, r, nil)
	if err != nil {
		return StatusOf(err), nil, err
	}
	var out models.Message
	if err := resp.Decode(&out); err != nil {
		return resp.Status, nil, err
	}
	return resp.Status, &out, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (*models.Message, error) {
	var out models.Message
	path := PathVerifyEmail + "?token=" + url.QueryEscape(token)
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (*models.Message, error) {
	var out models.Message
	if err := c.call(ctx, http.MethodPost, PathForgotPassword, map[string]string{"email": email}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (*models.Message, error) {
	var out models.Message
	body := map[string]string{"token": token, "newPassword": newPassword}
	if err := c.call(ctx, http.MethodPost, PathResetPassword, body, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend to drop the session. Callers clear local state
// regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, PathLogout, nil, nil, nil)
}

func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := c.call(ctx, http.MethodGet, PathProfile, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.Message, error) {
	var out models.Message
	if err := c.call(ctx, http.MethodPut, PathUpdateProfile, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, p models.PasswordChange) (*models.Message, error) {
	var out models.Message
	if err := c.call(ctx, http.MethodPut, PathChangePassword, p, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPhoto posts an image as multipart form data under the "photo" field.
func (c *Client) UploadPhoto(ctx context.Context, filename, contentType string, data []byte) (*models.PhotoResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(ctx, http.MethodPost, PathUploadPhoto, &buf, headers)
	if err != nil {
		return nil, err
	}
	var out models.PhotoResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.ProfilePhoto == "" {
		return nil, fmt.Errorf("%w: upload returned no photo URL", ErrUnexpectedResponse)
	}
	return &out, nil
}

func (c *Client) Enable2FA(ctx context.Context) (*models.TwoFactorSetup, error) {
	var out models.TwoFactorSetup
	if err := c.call(ctx, http.MethodPost, PathEnable2FA, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Confirm2FA(ctx context.Context, code string) (*models.Message, error) {
	var out models.Message
	if err := c.call(ctx, http.MethodPost, PathConfirm2FA, map[string]string{"token": code}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Disable2FA(ctx context.Context, code string) (*models.Message, error) {
	var out models.Message
	if err := c.call(ctx, http.MethodPost, PathDisable2FA, map[string]string{"token": code}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SuspendAccount is exempt from the central 401 handling: a wrong password
// here must not sign the user out.
func (c *Client) SuspendAccount(ctx context.Context, password string) (*models.Message, error) {
	var out models.Message
	if err := c.call(ctx, http.MethodPost, PathSuspend, map[string]string{"password": password}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
