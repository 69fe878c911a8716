package models

// LoginResponse is the union of the two shapes /auth/login may return: a
// final session token, or a second-factor challenge with a temporary token.
type LoginResponse struct {
	Token       string `json:"token"`
	Requires2FA bool   `json:"requires2FA"`
	TempToken   string `json:"tempToken"`
	Message     string `json:"message"`
}

// TokenResponse is returned by second-factor verification.
type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Registration is the combined payload posted by the signup wizard.
type Registration struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Birthdate string `json:"birthdate"`
}

// ProfileUpdate carries the only fields editable from the profile tab.
type ProfileUpdate struct {
	Username  string `json:"username"`
	Birthdate string `json:"birthdate"`
}

// PasswordChange is write-only; it is never populated from the server.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// TwoFactorSetup is the provisioning material returned by /auth/2fa/enable.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	QRCode     string `json:"qrCode"`
	OTPAuthURL string `json:"otpauthUrl"`
}

// Message is the generic {message} acknowledgement body.
type Message struct {
	Message string `json:"message"`
}

// PhotoResponse is returned by /profile/upload-photo.
type PhotoResponse struct {
	Message      string `json:"message"`
	ProfilePhoto string `json:"profilePhoto"`
}
