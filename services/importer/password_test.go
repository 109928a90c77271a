package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPasswordPolicy(t *testing.T) {
	assert.True(t, CheckPasswordPolicy("Secure1Pass"))
	assert.False(t, CheckPasswordPolicy("weak"))
	assert.False(t, CheckPasswordPolicy("short1A"))
	assert.False(t, CheckPasswordPolicy("alllowercase1"))
	assert.False(t, CheckPasswordPolicy("ALLUPPERCASE1"))
	assert.False(t, CheckPasswordPolicy("NoDigitsHere"))
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword()
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(pw), 12)
		assert.True(t, strings.ContainsAny(pw, passwordUpper), "missing uppercase: %q", pw)
		assert.True(t, strings.ContainsAny(pw, passwordLower), "missing lowercase: %q", pw)
		assert.True(t, strings.ContainsAny(pw, passwordDigits), "missing digit: %q", pw)
		assert.True(t, strings.ContainsAny(pw, passwordSymbols), "missing symbol: %q", pw)
		assert.True(t, CheckPasswordPolicy(pw))

		seen[pw] = true
	}
	assert.Greater(t, len(seen), 1, "generator must not repeat a constant value")
}
