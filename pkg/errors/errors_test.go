package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeVariantNotFound, "no allele node for %s", "chr1:42")

	if err.Code != ErrCodeVariantNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeVariantNotFound)
	}

	if err.Message != "no allele node for chr1:42" {
		t.Errorf("Message = %v, want %v", err.Message, "no allele node for chr1:42")
	}

	expected := "VARIANT_NOT_FOUND: no allele node for chr1:42"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidFormat, cause, "read bundle")

	if err.Code != ErrCodeInvalidFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidFormat)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeMalformedNode, "test"),
			code:     ErrCodeMalformedNode,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeMalformedNode, "test"),
			code:     ErrCodeAmbiguousTopology,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeAmbiguousTopology, New(ErrCodeVariantNotFound, "inner"), "outer"),
			code:     ErrCodeAmbiguousTopology,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("resolve: %w", New(ErrCodeChromosomeNotFound, "chromosome 3")),
			code:     ErrCodeChromosomeNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNodeOutOfRange, "node 9")); got != ErrCodeNodeOutOfRange {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNodeOutOfRange)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeUnsortedVariants, "variant 3 precedes variant 2"), "variant 3 precedes variant 2"},
		{"plain", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeVariantNotFound, "x"), true},
		{fmt.Errorf("batch: %w", New(ErrCodeVariantNotFound, "x")), true},
		{New(ErrCodeAmbiguousTopology, "x"), false},
		{New(ErrCodeMalformedNode, "x"), false},
		{errors.New("x"), false},
	}
	for _, tt := range tests {
		if got := IsRecoverable(tt.err); got != tt.want {
			t.Errorf("IsRecoverable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
