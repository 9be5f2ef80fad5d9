package utils

import (
	"crypto/rand"
	"math/big"
)

// keyAlphabet is the character set used for opaque random identifiers
// (session ids, upload flow ids, one-time token ids).
const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// SessionKeyLength is the length of session identifiers. Long enough to be
// unguessable; the id is the only credential a client holds.
const SessionKeyLength = 42

// ReceiptLength is the number of digits in a submission recovery receipt.
const ReceiptLength = 16

// RandomKey returns a cryptographically random alphanumeric string of the
// given length.
//
// The function draws every character independently from crypto/rand; a
// failure of the system entropy source is unrecoverable and panics rather
// than silently degrading to a guessable value.
func RandomKey(length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(keyAlphabet)))

	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("utils: system entropy source failed: " + err.Error())
		}
		out[i] = keyAlphabet[n.Int64()]
	}

	return string(out)
}

// RandomReceipt returns a fresh numeric recovery receipt of ReceiptLength
// digits. The plaintext receipt is shown to the submitter exactly once;
// only its salted hash is ever persisted.
func RandomReceipt() string {
	digits := make([]byte, ReceiptLength)
	ten := big.NewInt(10)

	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			panic("utils: system entropy source failed: " + err.Error())
		}
		digits[i] = '0' + byte(n.Int64())
	}

	return string(digits)
}
