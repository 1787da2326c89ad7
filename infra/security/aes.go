// Package security provides the account-number cipher. Transfer requests
// carry account numbers encrypted by the requesting side; the saga decrypts
// them for lookup and re-encrypts the counterpart before it lands in the
// ledger.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const keyIterations = 4096

// AESCipher is an AES-256-GCM cipher with a key derived from a shared
// passphrase via PBKDF2.
type AESCipher struct {
	aead cipher.AEAD
}

// NewAESCipher derives the key and builds the cipher. Passphrase and salt
// must match the requesting side's configuration or decryption of inbound
// account numbers will fail.
func NewAESCipher(passphrase, salt string) (*AESCipher, error) {
	if passphrase == "" || salt == "" {
		return nil, errors.New("cipher passphrase and salt are required")
	}
	key := pbkdf2.Key([]byte(passphrase), []byte(salt), keyIterations, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &AESCipher{aead: aead}, nil
}

// Encrypt seals the plaintext and returns base64(nonce || ciphertext).
func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *AESCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", errors.New("ciphertext shorter than nonce")
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}
	return string(plain), nil
}
