package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "12345678901234567890123456789012" // 32 bytes for AES-256

func TestEncryptDecryptTOTPSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{name: "normal secret", secret: "JBSWY3DPEHPK3PXP"},
		{name: "long secret", secret: "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"},
		{name: "short secret", secret: "ABC123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := EncryptTOTPSecret(tt.secret, testKey)
			require.NoError(t, err)
			assert.NotEqual(t, tt.secret, encrypted)

			decrypted, err := DecryptTOTPSecret(encrypted, testKey)
			require.NoError(t, err)
			assert.Equal(t, tt.secret, decrypted)
		})
	}
}

func TestEncryptTOTPSecret_DifferentNonces(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	encrypted1, err := EncryptTOTPSecret(secret, testKey)
	require.NoError(t, err)
	encrypted2, err := EncryptTOTPSecret(secret, testKey)
	require.NoError(t, err)

	// Random nonce means two encryptions never collide
	assert.NotEqual(t, encrypted1, encrypted2)
}

func TestEncryptTOTPSecret_InvalidKey(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	_, err := EncryptTOTPSecret(secret, "")
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = EncryptTOTPSecret(secret, "tooshort")
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestDecryptTOTPSecret_InvalidInput(t *testing.T) {
	_, err := DecryptTOTPSecret("not-valid-base64!!!", testKey)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	// "abc" in base64, shorter than a GCM nonce
	_, err = DecryptTOTPSecret("YWJj", testKey)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecryptTOTPSecret_WrongKey(t *testing.T) {
	otherKey := "abcdefghijklmnopqrstuvwxyz123456"
	secret := "JBSWY3DPEHPK3PXP"

	encrypted, err := EncryptTOTPSecret(secret, testKey)
	require.NoError(t, err)

	_, err = DecryptTOTPSecret(encrypted, otherKey)
	assert.Error(t, err)
}

func TestEncryptDecryptEmpty(t *testing.T) {
	encrypted, err := EncryptTOTPSecret("", testKey)
	assert.NoError(t, err)
	assert.Equal(t, "", encrypted)

	decrypted, err := DecryptTOTPSecret("", testKey)
	assert.NoError(t, err)
	assert.Equal(t, "", decrypted)
}
