package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHex(t *testing.T) {
	a, err := NewHex(16)
	require.NoError(t, err)
	b, err := NewHex(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestNewAPIKey(t *testing.T) {
	key, err := NewAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, APIKeyPrefix))
	assert.Len(t, key, len(APIKeyPrefix)+32)
}

func TestNewWebhookSecret(t *testing.T) {
	secret, err := NewWebhookSecret()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(secret, WebhookSecretPrefix))
}

func TestHashSHA256(t *testing.T) {
	h1 := HashSHA256("some-token")
	h2 := HashSHA256("some-token")
	h3 := HashSHA256("other-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestMask(t *testing.T) {
	masked := Mask("crm_live_0123456789abcdef0123456789abcdef")
	assert.Equal(t, "crm_live_012...cdef", masked)
	assert.Equal(t, "****", Mask("short"))
}
