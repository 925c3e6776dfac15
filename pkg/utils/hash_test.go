package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicID(t *testing.T) {
	a := PublicID("user-1")
	b := PublicID("user-1")
	c := PublicID("user-2")

	assert.Equal(t, a, b, "digest must be deterministic")
	assert.NotEqual(t, a, c, "distinct ids must digest differently")
	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
}
