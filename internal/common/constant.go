package common

const (
	// AuthorizationHeaderName carries the bearer session token.
	AuthorizationHeaderName = "Authorization"

	// DeviceIDHeaderName identifies this installation so the backend can
	// attribute login-history entries to a device.
	DeviceIDHeaderName = "X-Device-ID"

	// SessionTokenKey is the metadata key holding the persisted session token.
	SessionTokenKey = "gophauth.session_token"

	// DeviceIDKey is the metadata key holding the generated device id.
	DeviceIDKey = "gophauth.device_id"

	// NotAvailable is shown for profile attributes the backend left empty.
	NotAvailable = "N/A"
)
