package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretCipher_RoundTrip(t *testing.T) {
	c, err := NewSecretCipher("test-passphrase", "test-salt")
	require.NoError(t, err)

	encrypted, err := c.Encrypt("app-specific-password")
	require.NoError(t, err)
	assert.NotEqual(t, "app-specific-password", encrypted)

	decrypted, err := c.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "app-specific-password", decrypted)
}

func TestSecretCipher_EncryptIsNonDeterministic(t *testing.T) {
	c, err := NewSecretCipher("test-passphrase", "test-salt")
	require.NoError(t, err)

	first, err := c.Encrypt("secret")
	require.NoError(t, err)
	second, err := c.Encrypt("secret")
	require.NoError(t, err)

	// Random nonce per call
	assert.NotEqual(t, first, second)
}

func TestSecretCipher_WrongKeyFails(t *testing.T) {
	c1, err := NewSecretCipher("passphrase-one", "salt")
	require.NoError(t, err)
	c2, err := NewSecretCipher("passphrase-two", "salt")
	require.NoError(t, err)

	encrypted, err := c1.Encrypt("secret")
	require.NoError(t, err)

	_, err = c2.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestSecretCipher_RejectsEmptyPassphrase(t *testing.T) {
	_, err := NewSecretCipher("", "salt")
	assert.Error(t, err)
}

func TestSecretCipher_RejectsGarbageCiphertext(t *testing.T) {
	c, err := NewSecretCipher("test-passphrase", "test-salt")
	require.NoError(t, err)

	_, err = c.Decrypt("not-base64!!!")
	assert.Error(t, err)

	_, err = c.Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}
