// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	// Same password, fresh salt, different encoding.
	hash2, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	valid, err := VerifyPassword("s3cret-password", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyPasswordBadEncoding(t *testing.T) {
	_, err := VerifyPassword("anything", "not-an-argon2-hash")
	assert.Error(t, err)
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	t.Run("valid password", func(t *testing.T) {
		valid, _, err := VerifyPasswordTimingSafe("s3cret-password", &hash)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("wrong password", func(t *testing.T) {
		valid, _, err := VerifyPasswordTimingSafe("wrong", &hash)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("nil hash always fails", func(t *testing.T) {
		valid, rehash, err := VerifyPasswordTimingSafe("anything", nil)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Empty(t, rehash)
	})

	t.Run("empty hash always fails", func(t *testing.T) {
		empty := ""
		valid, rehash, err := VerifyPasswordTimingSafe("anything", &empty)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Empty(t, rehash)
	})
}

func TestGenerateSessionID(t *testing.T) {
	id, err := GenerateSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 43)

	id2, err := GenerateSessionID()
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)

	// URL-safe alphabet only; the value goes straight into a cookie.
	assert.NotContains(t, id, "+")
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, "=")
}

func TestGenerateNumericCode(t *testing.T) {
	for range 50 {
		code, err := GenerateNumericCode(8)
		require.NoError(t, err)
		require.Len(t, code, 8)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "unexpected rune %q", c)
		}
	}
}

func TestGenerateNumericCodeCoversAllDigits(t *testing.T) {
	counts := make(map[rune]int, 10)
	for range 250 {
		code, err := GenerateNumericCode(8)
		require.NoError(t, err)
		require.Len(t, code, 8)
		for _, c := range code {
			counts[c]++
		}
	}

	// 2000 draws: every digit shows up, and none dominates.
	for _, d := range "0123456789" {
		assert.Greater(t, counts[d], 0, "digit %q never generated", d)
		assert.Less(t, counts[d], 400, "digit %q over-represented", d)
	}
}

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 43)

	token2, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}
