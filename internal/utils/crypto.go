// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"

	"golang.org/x/crypto/chacha20poly1305"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GeneratePayoutReference returns an opaque reference recorded against a
// disbursed transaction.
func GeneratePayoutReference() (string, error) {
	random, err := GenerateRandomString(24)
	if err != nil {
		return "", err
	}
	return "payout_" + random, nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// sealKey stretches the configured passphrase to the 32 bytes XChaCha20
// requires.
func sealKey(passphrase string) []byte {
	key := sha256.Sum256([]byte(passphrase))
	return key[:]
}

// SealCredentials encrypts plaintext credentials for storage. The nonce is
// prepended to the ciphertext.
func SealCredentials(passphrase, plaintext string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("credential seal key is not configured")
	}

	aead, err := chacha20poly1305.NewX(sealKey(passphrase))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// OpenCredentials decrypts credentials produced by SealCredentials.
func OpenCredentials(passphrase string, sealed []byte) (string, error) {
	if passphrase == "" {
		return "", errors.New("credential seal key is not configured")
	}

	aead, err := chacha20poly1305.NewX(sealKey(passphrase))
	if err != nil {
		return "", err
	}

	if len(sealed) < aead.NonceSize() {
		return "", errors.New("sealed credentials are truncated")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
