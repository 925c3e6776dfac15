// Package randid mints short random identifiers that are checked for
// collisions against existing records before being handed out.
package randid

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars = "0123456789"

	// maxAttempts bounds the collision-retry loop so a saturated id space
	// fails instead of spinning forever.
	maxAttempts = 8
)

// ErrNoAlphabet is returned when no character class is selected.
var ErrNoAlphabet = errors.New("randid: at least one character class must be selected")

// ErrExhausted is returned when no free identifier was found within the
// bounded number of attempts.
var ErrExhausted = errors.New("randid: exhausted attempts to find a free identifier")

// Alphabet selects which character classes candidates are drawn from.
type Alphabet struct {
	Lower  bool
	Upper  bool
	Digits bool
}

func (a Alphabet) pool() string {
	var p string
	if a.Lower {
		p += lowerChars
	}
	if a.Upper {
		p += upperChars
	}
	if a.Digits {
		p += digitChars
	}
	return p
}

// ExistsFunc reports whether a candidate identifier is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Generate draws length characters uniformly from the selected classes and
// retries with a fresh draw until exists reports the candidate free.
func Generate(ctx context.Context, length int, alphabet Alphabet, exists ExistsFunc) (string, error) {
	pool := alphabet.pool()
	if pool == "" {
		return "", ErrNoAlphabet
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := draw(length, pool)
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check candidate: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

func draw(length int, pool string) (string, error) {
	max := big.NewInt(int64(len(pool)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random draw: %w", err)
		}
		buf[i] = pool[n.Int64()]
	}
	return string(buf), nil
}
