package otp

import (
	"strings"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	gen, err := NewGenerator(6, AlphabetAlphanumeric)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	for i := 0; i < 100; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %d (%q)", len(code), code)
		}
		for _, c := range code {
			if !strings.ContainsRune(AlphabetAlphanumeric, c) {
				t.Fatalf("character %q outside alphabet", c)
			}
		}
	}
}

func TestGenerateDigitsOnly(t *testing.T) {
	gen, err := NewGenerator(6, AlphabetDigits)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	code, err := gen.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			t.Fatalf("expected digits only, got %q", code)
		}
	}
}

func TestGenerateCodesVary(t *testing.T) {
	gen, _ := NewGenerator(6, AlphabetAlphanumeric)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		seen[code] = true
	}
	// 50 draws from a 62^6 space colliding down to a handful would mean the
	// randomness source is broken.
	if len(seen) < 45 {
		t.Fatalf("expected distinct codes, got %d unique of 50", len(seen))
	}
}

func TestNewGeneratorRejectsBadInput(t *testing.T) {
	if _, err := NewGenerator(0, AlphabetDigits); err == nil {
		t.Fatalf("expected error for zero length")
	}
	if _, err := NewGenerator(6, ""); err == nil {
		t.Fatalf("expected error for empty alphabet")
	}
}
