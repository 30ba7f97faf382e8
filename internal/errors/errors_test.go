package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "hook outside render",
			code:    "E001",
			wantMsg: "Store hook used outside component render",
			wantCat: CategoryRuntime,
		},
		{
			name:    "render budget",
			code:    "E003",
			wantMsg: "Render budget exceeded",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config file",
			code:    "E100",
			wantMsg: "Invalid configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New("E004")
	if got := err.Error(); got != "E004: Store action not found" {
		t.Errorf("Error() = %q", got)
	}

	err.Wrap(fmt.Errorf("key %q", "increment"))
	if got := err.Error(); !strings.HasSuffix(got, `: key "increment"`) {
		t.Errorf("wrapped Error() = %q", got)
	}

	plain := Newf(CategoryCLI, "bad flag %s", "--x")
	if plain.Error() != "bad flag --x" {
		t.Errorf("Newf Error() = %q", plain.Error())
	}
}

func TestIsAndAs(t *testing.T) {
	cause := stderrors.New("boom")
	err := fmt.Errorf("flush: %w", New("E003").Wrap(cause))

	if !stderrors.Is(err, New("E003")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("E001")) {
		t.Error("errors.Is should not match a different code")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if CodeOf(err) != "E003" {
		t.Errorf("CodeOf = %q, want E003", CodeOf(err))
	}
	if CodeOf(cause) != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", CodeOf(cause))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E100") != nil {
		t.Error("FromError(nil) should be nil")
	}

	coded := New("E101")
	if FromError(coded, "E100") != coded {
		t.Error("FromError should return an existing *Error unchanged")
	}

	wrapped := FromError(stderrors.New("unexpected EOF"), "E100")
	if wrapped.Code != "E100" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E001").WithSuggestion("call hook.Use() inside the render function")
	out := err.Format()

	for _, want := range []string{
		"ERROR E001: Store hook used outside component render",
		"Hint: call hook.Use() inside the render function",
		"Learn more: https://vango.dev/docs/store/errors/E001",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("run: %w", New("E120")))
	if !strings.Contains(buf.String(), "ERROR E120: Metrics server failed") {
		t.Errorf("coded output = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("plain output = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %d", len(lines))
	}
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than width", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}
