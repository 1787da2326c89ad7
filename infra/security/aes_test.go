package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minwoo-song/bankcore/infra/security"
)

func newCipher(t *testing.T) *security.AESCipher {
	t.Helper()
	c, err := security.NewAESCipher("test-passphrase", "test-salt")
	require.NoError(t, err)
	return c
}

func TestAESCipher_RoundTrip(t *testing.T) {
	c := newCipher(t)

	for _, plaintext := range []string{"110-2345-678901", "", "계좌-123"} {
		encrypted, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encrypted)

		decrypted, err := c.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestAESCipher_NonceMakesCiphertextsDistinct(t *testing.T) {
	c := newCipher(t)

	first, err := c.Encrypt("110-2345-678901")
	require.NoError(t, err)
	second, err := c.Encrypt("110-2345-678901")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestAESCipher_RejectsTamperedCiphertext(t *testing.T) {
	c := newCipher(t)

	encrypted, err := c.Encrypt("110-2345-678901")
	require.NoError(t, err)

	tampered := []byte(encrypted)
	tampered[len(tampered)-5] ^= 1
	_, err = c.Decrypt(string(tampered))
	assert.Error(t, err)
}

func TestAESCipher_RejectsGarbage(t *testing.T) {
	c := newCipher(t)

	_, err := c.Decrypt("not base64 at all!!!")
	assert.Error(t, err)

	_, err = c.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.Error(t, err)
}

func TestAESCipher_KeyedByPassphrase(t *testing.T) {
	c := newCipher(t)
	other, err := security.NewAESCipher("different-passphrase", "test-salt")
	require.NoError(t, err)

	encrypted, err := c.Encrypt("110-2345-678901")
	require.NoError(t, err)

	_, err = other.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestNewAESCipher_RequiresPassphraseAndSalt(t *testing.T) {
	_, err := security.NewAESCipher("", "salt")
	assert.Error(t, err)
	_, err = security.NewAESCipher("passphrase", "")
	assert.Error(t, err)
}
