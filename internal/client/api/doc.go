// Package api is the HTTP adapter to the account backend.
//
// # Overview
//
// Every request goes through Client.Do, which:
//  1. prefixes the configured base URL and sends JSON with
//     Content-Type: application/json;
//  2. attaches "Authorization: Bearer <token>" when the session manager
//     holds a token, and the installation's device id;
//  3. on a 401 from any path outside the exemption list clears the session
//     and navigates to the login screen, so callers never special-case an
//     expired session.
//
// Exempt paths (second-factor verification and self-suspend by default)
// return the 401 to the caller untouched: a wrong 2FA code must not destroy
// the in-progress challenge.
//
// # Error Handling
//
// Non-2xx responses become *HTTPError carrying the server message verbatim.
// Conditions are also exposed as sentinels matched with errors.Is:
// ErrUnauthorized, ErrUnavailable, ErrUnexpectedResponse.
package api
