package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { PasswordCost = bcrypt.DefaultCost })

	first, err := HashPassword("Abcdef12!")
	require.NoError(t, err)
	second, err := HashPassword("Abcdef12!")
	require.NoError(t, err)

	assert.NotEqual(t, "Abcdef12!", first)
	assert.NotEqual(t, first, second, "hashes are salted")
	assert.True(t, PasswordMatches(first, "Abcdef12!"))
	assert.True(t, PasswordMatches(second, "Abcdef12!"))
	assert.False(t, PasswordMatches(first, "abcdef12!"))
	assert.False(t, PasswordMatches("not-a-hash", "Abcdef12!"))
}
