package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	k1 := DeriveKey("password")
	k2 := DeriveKey("password")
	k3 := DeriveKey("other")

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestEncryptDecrypt(t *testing.T) {
	key := DeriveKey("secret")
	plaintext := []byte("the payload")

	sealed, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "payload")

	opened, err := Decrypt(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)

	// nonces differ, so ciphertexts differ
	sealed2, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, sealed2)
}

func TestDecryptWrongKey(t *testing.T) {
	sealed, err := Encrypt(DeriveKey("right"), []byte("data"))
	require.NoError(t, err)

	_, err = Decrypt(DeriveKey("wrong"), sealed)
	assert.ErrorIs(t, err, ErrWrongKey)
}

func TestDecryptMalformed(t *testing.T) {
	key := DeriveKey("k")

	_, err := Decrypt(key, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortData)

	_, err = Decrypt(key[:5], []byte("whatever"))
	assert.ErrorIs(t, err, ErrBadKeySize)

	_, err = Encrypt([]byte("short"), []byte("data"))
	assert.ErrorIs(t, err, ErrBadKeySize)
}

func TestPackEncryptedRoundTrip(t *testing.T) {
	payload := []any{"a", int64(1), true}

	sealed, err := PackEncrypted(payload, "hunter2")
	require.NoError(t, err)

	out, err := UnpackEncrypted(sealed, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	_, err = UnpackEncrypted(sealed, "hunter3")
	assert.ErrorIs(t, err, ErrWrongKey)
}
