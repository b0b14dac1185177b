package primitives

import (
	"crypto/hmac"
	"crypto/sha256"
)

// HMACSize is the HMAC-SHA256 output length in bytes.
const HMACSize = 32

// ComputeHMAC returns the HMAC-SHA256 of data keyed with key.
func ComputeHMAC(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// ConstantTimeEqual reports whether a and b hold the same bytes, in time
// independent of where they first differ. A length mismatch is reported
// as unequal without comparing contents.
func ConstantTimeEqual(a, b []byte) bool {
	return hmac.Equal(a, b)
}
