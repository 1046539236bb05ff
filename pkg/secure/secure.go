// Package secure encrypts packed envelopes with a password-derived key.
// Implements: prd005-secure-envelopes (key derivation, sealed payloads).
package secure

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

// Key derivation parameters. The salt is fixed so the same password always
// yields the same key; payloads are randomized through the per-message
// nonce instead.
const (
	kdfIterations = 100000
	keySize       = chacha20poly1305.KeySize
)

var kdfSalt = []byte("knapsack-secure")

// Encryption errors.
var (
	ErrWrongKey   = errors.New("wrong key or corrupted payload")
	ErrShortData  = errors.New("encrypted payload too short")
	ErrBadKeySize = errors.New("key must be 32 bytes")
)

// DeriveKey derives a 32-byte encryption key from a password using
// PBKDF2-SHA256.
func DeriveKey(password string) []byte {
	return pbkdf2.Key([]byte(password), kdfSalt, kdfIterations, keySize, sha256.New)
}

// Encrypt seals plaintext with key. The random nonce is prepended to the
// returned ciphertext.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	if len(key) != keySize {
		return nil, ErrBadKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext produced by Encrypt.
// Returns ErrWrongKey when authentication fails.
func Decrypt(key, ciphertext []byte) ([]byte, error) {
	if len(key) != keySize {
		return nil, ErrBadKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, ErrShortData
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongKey, err)
	}
	return plaintext, nil
}

// PackEncrypted packs root and seals the envelope's JSON text with a key
// derived from password.
func PackEncrypted(root any, password string) ([]byte, error) {
	text, err := pack.PackToJSON(root)
	if err != nil {
		return nil, err
	}
	return Encrypt(DeriveKey(password), []byte(text))
}

// UnpackEncrypted opens a payload produced by PackEncrypted and unpacks
// the envelope inside it.
func UnpackEncrypted(data []byte, password string) (any, error) {
	plaintext, err := Decrypt(DeriveKey(password), data)
	if err != nil {
		return nil, err
	}
	return pack.UnpackFromJSON(string(plaintext))
}
