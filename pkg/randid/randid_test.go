package randid

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func never(ctx context.Context, candidate string) (bool, error) {
	return false, nil
}

func TestGenerateLengthAndCharset(t *testing.T) {
	ctx := context.Background()

	id, err := Generate(ctx, 8, Alphabet{Lower: true}, never)
	require.NoError(t, err)
	assert.Len(t, id, 8)
	for _, r := range id {
		assert.Contains(t, lowerChars, string(r))
	}

	id, err = Generate(ctx, 12, Alphabet{Upper: true, Digits: true}, never)
	require.NoError(t, err)
	assert.Len(t, id, 12)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(upperChars+digitChars, r), "unexpected character %q", r)
	}
}

func TestGenerateRequiresAlphabet(t *testing.T) {
	_, err := Generate(context.Background(), 8, Alphabet{}, never)
	assert.ErrorIs(t, err, ErrNoAlphabet)
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, candidate string) (bool, error) {
		calls++
		return calls <= 2, nil
	}

	id, err := Generate(context.Background(), 8, Alphabet{Lower: true}, exists)
	require.NoError(t, err)
	assert.Len(t, id, 8)
	assert.Equal(t, 3, calls)
}

func TestGenerateExhaustsSaturatedSpace(t *testing.T) {
	calls := 0
	always := func(ctx context.Context, candidate string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := Generate(context.Background(), 8, Alphabet{Lower: true}, always)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, maxAttempts, calls)
}

func TestGeneratePropagatesCheckError(t *testing.T) {
	boom := fmt.Errorf("db down")
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return false, boom
	}

	_, err := Generate(context.Background(), 8, Alphabet{Lower: true}, exists)
	assert.ErrorIs(t, err, boom)
}
