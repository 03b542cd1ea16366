package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// claimCodeAlphabet omits 0/O and 1/I so codes survive being read out loud
// at the pickup counter.
const claimCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	defaultClaimCodeLength = 8
	maxClaimCodeAttempts   = 10
)

// ClaimCodeIssuer generates fixed-length pickup codes, retrying on collision
// up to a hard cap.
type ClaimCodeIssuer struct {
	length      int
	maxAttempts int
}

// NewClaimCodeIssuer creates a new ClaimCodeIssuer. A non-positive length
// falls back to the default.
func NewClaimCodeIssuer(length int) *ClaimCodeIssuer {
	if length <= 0 {
		length = defaultClaimCodeLength
	}
	return &ClaimCodeIssuer{
		length:      length,
		maxAttempts: maxClaimCodeAttempts,
	}
}

// Generate returns a code that inUse reports as free. Collisions are retried;
// exhausting the cap returns ErrClaimCodeExhausted, which means the code space
// is undersized for the active order volume.
func (i *ClaimCodeIssuer) Generate(inUse func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < i.maxAttempts; attempt++ {
		code, err := i.random()
		if err != nil {
			return "", err
		}
		taken, err := inUse(code)
		if err != nil {
			return "", fmt.Errorf("failed to check claim code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", i.maxAttempts, ErrClaimCodeExhausted)
}

func (i *ClaimCodeIssuer) random() (string, error) {
	buf := make([]byte, i.length)
	max := big.NewInt(int64(len(claimCodeAlphabet)))
	for n := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate claim code: %w", err)
		}
		buf[n] = claimCodeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
