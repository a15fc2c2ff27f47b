// Package cryptox holds the password-credential primitives: an argon2id key
// derivation and a sha256 verifier. The store never sees a password, only
// the salt and the verifier.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of new password salts in bytes.
const SaltSize = 32

// DeriveKey stretches a password with argon2id under the given salt.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key into the value stored alongside the
// operator profile and compared at login.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// GenerateSalt returns a fresh random salt.
func GenerateSalt() []byte {
	salt := make([]byte, SaltSize)
	// rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(salt)
	return salt
}

// Wipe zeroes a byte slice holding sensitive material.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
