// Package authflow holds the state machines behind the sign-in screens:
// credentials with an optional second factor, forgotten and reset
// passwords, email verification and sign-out.
//
// Flows are safe for concurrent use. Deferred transitions (success
// overlays, redirects, countdowns) go through a timerx.Scheduler and are
// never cancelled; their effects are idempotent.
package authflow
