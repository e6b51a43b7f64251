// Package password hashes and verifies account passwords.
//
// A password is never handed to bcrypt directly. It is first keyed with the
// deployment pepper through HMAC-SHA256 and base64 encoded, which gives bcrypt
// a fixed 43-byte input below its 72-byte limit. Stored hashes cannot be
// checked without the pepper.
package password

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt work factor used when none is configured.
	DefaultCost = 10

	// MaxPasswordLength is the longest password, in bytes, accepted at
	// registration.
	MaxPasswordLength = 128
)

var (
	ErrEmptyPepper = errors.New("password: pepper must not be empty")
	ErrInvalidCost = errors.New("password: invalid bcrypt cost")
)

// Hasher is immutable after construction and safe for concurrent use.
type Hasher struct {
	pepper []byte
	cost   int
}

func New(pepper []byte, cost int) (*Hasher, error) {
	if len(pepper) == 0 {
		return nil, ErrEmptyPepper
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidCost, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	p := make([]byte, len(pepper))
	copy(p, pepper)
	return &Hasher{pepper: p, cost: cost}, nil
}

// Hash returns a bcrypt record embedding a fresh random salt and the cost.
func (h *Hasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword(h.peppered(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// Verify reports whether plaintext matches encoded. Malformed records simply
// do not match.
func (h *Hasher) Verify(plaintext, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), h.peppered(plaintext)) == nil
}

// Cost returns the work factor embedded in encoded.
func (h *Hasher) Cost(encoded string) (int, bool) {
	c, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return 0, false
	}
	return c, true
}

func (h *Hasher) peppered(plaintext string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	sum := mac.Sum(nil)

	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum)
	return out
}
