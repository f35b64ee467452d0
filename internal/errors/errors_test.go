package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_RegisteredCode(t *testing.T) {
	err := New("N101")

	if err.Category != CategoryConfig {
		t.Errorf("category = %q, want config", err.Category)
	}
	if err.Message != "Invalid configuration file" {
		t.Errorf("message = %q", err.Message)
	}
	if err.Error() != "N101: Invalid configuration file" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("N999")
	if err.Message != "Unknown error" {
		t.Errorf("message = %q", err.Message)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := New("N101").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.HasSuffix(err.Error(), ": unexpected end of JSON input") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "N101") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("N102")
	wrapped := fmt.Errorf("load: %w", orig)
	if got := FromError(wrapped, "N101"); got != orig {
		t.Error("FromError should return the wrapped *Error")
	}

	plain := stderrors.New("boom")
	got := FromError(plain, "N201")
	if got.Code != "N201" || !stderrors.Is(got, plain) {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New("N300"))
	if !HasCode(err, "N300") {
		t.Error("expected HasCode to match")
	}
	if HasCode(err, "N301") {
		t.Error("unexpected match")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("N102").
		WithDetailf("timeout must be positive, got %s", "-1s").
		WithSuggestion("Set \"timeout\" to a value such as \"10s\"")

	out := err.Format()
	for _, want := range []string{
		"ERROR N102: Invalid configuration value",
		"timeout must be positive, got -1s",
		"Hint: Set \"timeout\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("plain output = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, New("N301"))
	if !strings.Contains(buf.String(), "ERROR N301: Subscription failed") {
		t.Errorf("coded output = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}
