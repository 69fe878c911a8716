// Package models defines the client-side data models exchanged with the
// account API.
package models

import (
	"strings"
	"time"
)

// LoginEntry is one row of the server-maintained login history.
type LoginEntry struct {
	Time     time.Time `json:"time"`
	IP       string    `json:"ip"`
	Location string    `json:"location"`
	Device   string    `json:"device"`
}

// Profile is the record shown by the profile editor. Password fields are
// deliberately absent: they are write-only (see PasswordChange).
type Profile struct {
	Username         string       `json:"username"`
	Email            string       `json:"email"`
	TwoFactorEnabled bool         `json:"twoFactorEnabled"`
	LastLogin        *time.Time   `json:"lastLogin,omitempty"`
	LoginHistory     []LoginEntry `json:"loginHistory"`
	ProfilePhoto     string       `json:"profilePhoto"`
	Birthdate        string       `json:"birthdate"`
	Role             string       `json:"role"`
	Status           string       `json:"status"`
	Verified         bool         `json:"verified"`
}

// NormalizeBirthdate reduces server date-time values such as
// "1990-04-12T00:00:00.000Z" to the editable "1990-04-12" form.
func NormalizeBirthdate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(time.DateOnly)
	}
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format(time.DateOnly)
	}
	return s
}

// HistoryNewestFirst returns a copy of the login history with the most recent
// entry first. The server appends, so this is a reversal.
func (p *Profile) HistoryNewestFirst() []LoginEntry {
	out := make([]LoginEntry, len(p.LoginHistory))
	for i, e := range p.LoginHistory {
		out[len(out)-1-i] = e
	}
	return out
}
