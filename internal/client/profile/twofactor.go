package profile

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/forms"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/pquerna/otp"
)

// QRFileName is the file the enrollment QR code is written to.
const QRFileName = "gophauth-2fa.png"

// QRSize is the edge of the rendered QR code in pixels.
const QRSize = 256

var (
	ErrNoProvisioning = errors.New("two-factor enrollment not started")
	ErrNotDisabling   = errors.New("two-factor disable not started")
)

// Provisioning is the enrollment material shown while 2FA is being set up.
// It is dropped as soon as enrollment is confirmed.
type Provisioning struct {
	Secret    string
	QRPayload string
	QRPath    string

	Issuer    string
	Account   string
	Algorithm string
	Digits    int
	Period    uint64
}

// Description is the manual-entry fallback for authenticators that cannot
// scan the code.
func (p *Provisioning) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\n", p.Account)
	if p.Issuer != "" {
		fmt.Fprintf(&b, "Issuer: %s\n", p.Issuer)
	}
	fmt.Fprintf(&b, "Key: %s\n", p.Secret)
	fmt.Fprintf(&b, "Type: time-based, %s, %d digits, every %d seconds", p.Algorithm, p.Digits, p.Period)
	return b.String()
}

func (e *Editor) Provisioning() *Provisioning {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.provisioning
}

// Disabling reports whether the disable confirmation step is showing.
func (e *Editor) Disabling() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disabling
}

// Begin2FA requests a fresh secret and renders its QR code into OutputDir.
func (e *Editor) Begin2FA(ctx context.Context) (*Provisioning, error) {
	p, err := e.Profile()
	if err != nil {
		return nil, err
	}

	setup, err := e.api.Enable2FA(ctx)
	if err != nil {
		e.log.Warn(ctx, "2fa enable failed", "error", err)
		e.setError(common.UserMessage(err, "Failed to start two-factor setup."))
		return nil, err
	}

	raw := setup.OTPAuthURL
	if raw == "" {
		if setup.Secret == "" {
			e.setError("Failed to start two-factor setup.")
			return nil, fmt.Errorf("2fa setup: no secret in response")
		}
		raw = provisioningURI(e.opts.Issuer, p.Email, setup.Secret)
	}
	key, err := otp.NewKeyFromURL(raw)
	if err != nil {
		e.setError("Failed to start two-factor setup.")
		return nil, fmt.Errorf("2fa setup: %w", err)
	}

	prov := &Provisioning{
		Secret:    key.Secret(),
		QRPayload: key.URL(),
		Issuer:    key.Issuer(),
		Account:   key.AccountName(),
		Algorithm: key.Algorithm().String(),
		Digits:    key.Digits().Length(),
		Period:    key.Period(),
	}
	if prov.Secret == "" {
		prov.Secret = setup.Secret
	}

	path, err := e.writeQR(key, setup.QRCode)
	if err != nil {
		e.log.Warn(ctx, "qr code not written", "error", err)
	} else {
		prov.QRPath = path
	}

	e.mu.Lock()
	e.provisioning = prov
	e.errMsg = ""
	e.mu.Unlock()
	return prov, nil
}

func provisioningURI(issuer, account, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// writeQR renders the key as a PNG. When rendering fails it falls back to
// a data URL image supplied by the backend.
func (e *Editor) writeQR(key *otp.Key, dataURL string) (string, error) {
	var buf bytes.Buffer
	img, err := key.Image(QRSize, QRSize)
	if err == nil {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		data, derr := decodeDataURL(dataURL)
		if derr != nil {
			return "", errors.Join(err, derr)
		}
		buf.Reset()
		buf.Write(data)
	}

	return filex.WriteUserFile(e.opts.OutputDir, QRFileName, buf.Bytes())
}

func decodeDataURL(s string) ([]byte, error) {
	const prefix = "base64,"
	i := strings.Index(s, prefix)
	if !strings.HasPrefix(s, "data:") || i < 0 {
		return nil, errors.New("qr code is not a base64 data URL")
	}
	return base64.StdEncoding.DecodeString(s[i+len(prefix):])
}

func checkCode(code string) error {
	return forms.Var("code", code, "len=6,numeric", forms.Messages{
		"code": "Enter the 6-digit code from your authenticator app.",
	})
}

// Confirm2FA completes enrollment. The enabled flag is mirrored locally and
// the provisioning material discarded.
func (e *Editor) Confirm2FA(ctx context.Context, code string) error {
	if e.Provisioning() == nil {
		return ErrNoProvisioning
	}
	if err := checkCode(code); err != nil {
		e.setError(err.Error())
		return err
	}

	resp, err := e.api.Confirm2FA(ctx, code)
	if err != nil {
		e.setError(common.UserMessage(err, "Invalid verification code."))
		return err
	}

	e.mu.Lock()
	if e.profile != nil {
		e.profile.TwoFactorEnabled = true
	}
	var qr string
	if e.provisioning != nil {
		qr = e.provisioning.QRPath
	}
	e.provisioning = nil
	e.mu.Unlock()

	if qr != "" {
		if err := filex.RemoveUserFile(qr); err != nil {
			e.log.Warn(ctx, "qr code not removed", "error", err)
		}
	}

	e.notify(messageOr(resp, "Two-factor authentication enabled."), 0)
	return nil
}

// StartDisable2FA shows the confirmation step.
func (e *Editor) StartDisable2FA() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return ErrNotLoaded
	}
	if !e.profile.TwoFactorEnabled {
		return errors.New("two-factor authentication is not enabled")
	}
	e.disabling = true
	return nil
}

// CancelDisable2FA leaves 2FA enabled. Nothing is sent.
func (e *Editor) CancelDisable2FA() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disabling = false
}

func (e *Editor) ConfirmDisable2FA(ctx context.Context, code string) error {
	if !e.Disabling() {
		return ErrNotDisabling
	}
	if err := checkCode(code); err != nil {
		e.setError(err.Error())
		return err
	}

	resp, err := e.api.Disable2FA(ctx, code)
	if err != nil {
		e.setError(common.UserMessage(err, "Failed to disable two-factor authentication."))
		return err
	}

	e.mu.Lock()
	if e.profile != nil {
		e.profile.TwoFactorEnabled = false
	}
	e.disabling = false
	e.mu.Unlock()

	e.notify(messageOr(resp, "Two-factor authentication disabled."), 0)
	return nil
}

func messageOr(resp *models.Message, fallback string) string {
	if resp != nil && resp.Message != "" {
		return resp.Message
	}
	return fallback
}
