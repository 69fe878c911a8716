package common

// WipeByteArray overwrites b with zeros. Used for password buffers read from
// the terminal once they have been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NotAvailableIfEmpty returns s, or NotAvailable when s is empty.
func NotAvailableIfEmpty(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
