package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// DefaultLength is the common 6-digit code length.
	DefaultLength = 6
	// MaxLength bounds code length so 10^length fits comfortably in int64.
	MaxLength = 18
)

// ErrInvalidLength is returned when the configured code length is out of range.
var ErrInvalidLength = errors.New("otp: code length must be between 1 and 18")

// Generator produces one-time codes.
type Generator interface {
	// Generate returns a new random code.
	Generate() (string, error)
}

// NumericCode generates fixed-width digit codes using crypto/rand.
type NumericCode struct {
	length int
	max    *big.Int
}

// NewNumericCode constructs a generator for codes of the given length.
func NewNumericCode(length int) (*NumericCode, error) {
	if length < 1 || length > MaxLength {
		return nil, ErrInvalidLength
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	return &NumericCode{length: length, max: max}, nil
}

// Generate returns a uniformly distributed code over [0, 10^length),
// zero-padded to the configured width.
func (g *NumericCode) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.max)
	if err != nil {
		return "", fmt.Errorf("otp: generate: %w", err)
	}

	return fmt.Sprintf("%0*d", g.length, n), nil
}

// Length returns the configured code width.
func (g *NumericCode) Length() int {
	return g.length
}
