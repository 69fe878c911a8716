// Package codeinput implements a fixed-length numeric code entry made of
// independent single-digit cells.
package codeinput

import (
	"strings"
	"sync"
)

// DefaultLength is the number of cells used for one-time codes.
const DefaultLength = 6

// Input holds one digit per cell and tracks which cell has focus.
//
// The value is the in-order concatenation of the filled cells. Whether the
// code is complete is left to the owner, usually wired to auto-submit via
// OnChange.
type Input struct {
	mu       sync.Mutex
	cells    []rune
	focus    int
	onChange func(string)
}

// New returns an Input with n cells. n <= 0 selects DefaultLength.
func New(n int) *Input {
	if n <= 0 {
		n = DefaultLength
	}
	return &Input{cells: make([]rune, n)}
}

// Len reports the number of cells.
func (in *Input) Len() int { return len(in.cells) }

// OnChange registers the callback receiving the concatenated value after
// every accepted edit. The callback runs without the internal lock held.
func (in *Input) OnChange(f func(string)) {
	in.mu.Lock()
	in.onChange = f
	in.mu.Unlock()
}

// Focus returns the index of the focused cell.
func (in *Input) Focus() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.focus
}

// SetFocus moves focus to cell i if it exists.
func (in *Input) SetFocus(i int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if i >= 0 && i < len(in.cells) {
		in.focus = i
	}
}

// Value returns the concatenation of the filled cells.
func (in *Input) Value() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value()
}

func (in *Input) value() string {
	var b strings.Builder
	for _, r := range in.cells {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SetValue replaces the contents from a controlled value. Non-digits and
// excess characters are dropped. Focus lands on the first empty cell, or
// the last cell when all are filled. OnChange is not called.
func (in *Input) SetValue(v string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.cells {
		in.cells[i] = 0
	}
	i := 0
	for _, r := range v {
		if i == len(in.cells) {
			break
		}
		if isDigit(r) {
			in.cells[i] = r
			i++
		}
	}
	in.focus = min(i, len(in.cells)-1)
}

// Type enters r into cell i. A digit is written, the value emitted and focus
// moved to i+1 unless i is the last cell. Anything else is ignored.
// It reports whether the keystroke was accepted.
func (in *Input) Type(i int, r rune) bool {
	in.mu.Lock()
	if i < 0 || i >= len(in.cells) || !isDigit(r) {
		in.mu.Unlock()
		return false
	}
	in.cells[i] = r
	in.focus = i
	if i < len(in.cells)-1 {
		in.focus = i + 1
	}
	v, cb := in.value(), in.onChange
	in.mu.Unlock()

	if cb != nil {
		cb(v)
	}
	return true
}

// Backspace handles the erase key in cell i. A filled cell is cleared and
// keeps focus; an empty cell moves focus to i-1. On the first empty cell it
// does nothing.
func (in *Input) Backspace(i int) {
	in.mu.Lock()
	if i < 0 || i >= len(in.cells) {
		in.mu.Unlock()
		return
	}
	if in.cells[i] == 0 {
		if i > 0 {
			in.focus = i - 1
		}
		in.mu.Unlock()
		return
	}
	in.cells[i] = 0
	in.focus = i
	v, cb := in.value(), in.onChange
	in.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}

// Feed replays a typed line as keystrokes on the focused cell and returns
// the resulting value. '\b' and DEL act as backspace. Typing into the last
// cell overwrites it, as focus does not advance past it.
func (in *Input) Feed(line string) string {
	for _, r := range line {
		switch r {
		case '\b', 0x7f:
			in.Backspace(in.Focus())
		default:
			in.Type(in.Focus(), r)
		}
	}
	return in.Value()
}

// Reset empties every cell and focuses the first.
func (in *Input) Reset() {
	in.SetValue("")
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
