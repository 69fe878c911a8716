// Package cli provides the interactive GophAuth command-line client.
//
// It wires configuration, the local session database, the account API
// adapter and an interactive REPL whose screens follow the account flows:
// login (with a second factor), signup, forgotten and reset passwords,
// email verification and the profile page.
//
// The App is both the Navigator and the Reloader used by the flows, so a
// rejected session anywhere lands the user back on the login screen.
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
