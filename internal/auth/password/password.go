// Package password salts and hashes plaintext passwords and verifies
// candidates against the stored salt and hash. The salt is stored in its own
// column, so the derivation is explicit here rather than embedded in the hash
// string.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters; interactive-login strength.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	keyLen       = 32
	saltByteSize = 16
)

// Hash generates a fresh random salt and derives the password hash.
// Both return values are hex-encoded for storage in text columns.
func Hash(plaintext string) (hash, salt string, err error) {
	rawSalt := make([]byte, saltByteSize)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	salt = hex.EncodeToString(rawSalt)
	hash, err = HashWithSalt(plaintext, salt)
	if err != nil {
		return "", "", err
	}
	return hash, salt, nil
}

// HashWithSalt derives the hash for plaintext under an existing hex salt.
func HashWithSalt(plaintext, salt string) (string, error) {
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	key, err := scrypt.Key([]byte(plaintext), rawSalt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Verify reports whether plaintext matches the stored salt+hash pair.
// Comparison is constant-time.
func Verify(plaintext, salt, hash string) (bool, error) {
	candidate, err := HashWithSalt(plaintext, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1, nil
}
