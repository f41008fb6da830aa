package common

import "crypto/rand"

// GenerateRandByteArray returns n random bytes. crypto/rand.Read never fails on
// supported platforms, so the error is not surfaced.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray zeroes b in place. Used for plaintext passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
