package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Name?\n> " {
		t.Fatalf("prompt = %q", out.String())
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	if err == nil {
		t.Fatal("expected EOF on empty input")
	}
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out, "Enter password")
	if err != nil || string(pw) != "s3cret" {
		t.Fatalf("got %q, err=%v", pw, err)
	}
	if !strings.HasPrefix(out.String(), "Enter password: ") {
		t.Fatalf("prompt = %q", out.String())
	}

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	if _, err := GetPassword(&out, "Enter password"); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123456\n", "123456"},
		{"123 456\n", "123456"},
		{"12-34-56\n", "123456"},
		{"12a\n", "12"},
		{"1234567\n", "123457"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := GetCode(rdr(tt.in), "Code", &out)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("GetCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
