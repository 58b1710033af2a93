// Package otpcode generates numeric one-time codes.
package otpcode

import (
	"crypto/rand"
	"math/big"
)

const (
	min  = 100000
	span = 900000
)

// Generator produces one-time codes. Implementations must be safe for
// concurrent use.
type Generator interface {
	Generate() (string, error)
}

// SixDigit generates uniformly distributed 6-digit codes in [100000, 999999].
//
// Codes are drawn from crypto/rand; they are secrets, not checksums.
type SixDigit struct{}

// NewSixDigit returns a 6-digit code generator.
func NewSixDigit() *SixDigit {
	return &SixDigit{}
}

// Generate returns a new code as a decimal string.
func (g *SixDigit) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(min)).String(), nil
}
