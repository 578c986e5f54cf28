package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabets for generated codes. The alphanumeric set matches what the
// original product shipped: digits plus upper and lower case ASCII letters.
const (
	AlphabetDigits       = "0123456789"
	AlphabetAlphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Generator produces fixed-length one-time codes. It keeps no state between
// calls; each position is drawn independently and uniformly from the alphabet.
type Generator struct {
	length   int
	alphabet string
}

// NewGenerator builds a code generator for the given length and alphabet.
func NewGenerator(length int, alphabet string) (*Generator, error) {
	if length <= 0 {
		return nil, fmt.Errorf("otp length must be positive, got %d", length)
	}
	if alphabet == "" {
		return nil, fmt.Errorf("otp alphabet must not be empty")
	}
	return &Generator{length: length, alphabet: alphabet}, nil
}

// Generate returns a fresh code. crypto/rand keeps the per-position draw
// uniform; modulo bias is avoided by rand.Int.
func (g *Generator) Generate() (string, error) {
	max := big.NewInt(int64(len(g.alphabet)))
	code := make([]byte, g.length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw otp character: %w", err)
		}
		code[i] = g.alphabet[n.Int64()]
	}
	return string(code), nil
}
