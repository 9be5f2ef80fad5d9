package utils

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used for receipt hashing. Receipts are short numeric
// secrets, so the memory-hard KDF is what makes offline guessing from a
// leaked database impractical.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// HashReceipt derives the persisted form of a submission receipt using
// Argon2id keyed with the tenant-specific salt.
//
// Parameters:
//
//	receipt - the plaintext receipt as shown to the submitter
//	salt    - the tenant's receipt salt
//
// Returns:
//
//	string - hex-encoded Argon2id digest, the only form ever stored
func HashReceipt(receipt string, salt string) string {
	digest := argon2.IDKey([]byte(receipt), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(digest)
}

// HashPassword derives the stored form of a user password with the same
// Argon2id parameters, keyed with the user's individual salt.
func HashPassword(password, salt string) string {
	return HashReceipt(password, salt)
}

// CheckPassword reports whether the given password matches the stored
// hash, in constant time.
func CheckPassword(password, salt, storedHash string) bool {
	return ConstantTimeEqual(HashPassword(password, salt), storedHash)
}

// APITokenDigest computes the stored comparison form of an API token:
// a hex-encoded SHA-512 digest. The digest (not the token) lives in tenant
// configuration.
func APITokenDigest(token string) string {
	sum := sha512.Sum512([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual compares two strings without leaking the position of
// the first differing byte. Used for every credential comparison on the
// request path.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
