package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// Cipher encrypts PII columns (company contact emails) at rest with AES-GCM.
// The key is injected at startup from configuration, never embedded in source.
type Cipher struct {
	key []byte
}

// New returns a Cipher for a 32-byte AES-256 key.
func New(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, errors.New("encryption key must be exactly 32 bytes")
	}
	return &Cipher{key: key}, nil
}

// Encrypt encrypts data using AES-GCM and returns the ciphertext and nonce.
func (c *Cipher) Encrypt(plaintext string) ([]byte, []byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}

	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	return ciphertext, nonce, nil
}

// Decrypt decrypts AES-GCM encrypted data.
func (c *Cipher) Decrypt(ciphertext, nonce []byte) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
