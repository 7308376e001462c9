package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("s3cret", "not-a-hash"))
}

func TestGenerateAccessCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateAccessCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestNormalizeAccessCode(t *testing.T) {
	assert.Equal(t, "K7MX-P2QD", NormalizeAccessCode(" k7mx-p2qd "))
	assert.Equal(t, "K7MX-P2QD", NormalizeAccessCode("k7mxp2qd"))
	assert.Equal(t, "K7MX-P2QD", NormalizeAccessCode("K7MX P2QD"))
}
