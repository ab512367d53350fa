package common

import (
	"crypto/rand"
	"math/big"
)

// AlphaNumeric is the alphabet confirmation codes are drawn from.
const AlphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MakeRandString returns a string of length n with characters drawn
// uniformly from alphabet using crypto/rand.
//
// Example:
//
//	code, err := MakeRandString(16, AlphaNumeric)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(code) // e.g., "q3ZcR8m0LpA7xT2k"
func MakeRandString(n int, alphabet string) (string, error) {
	if n <= 0 {
		return "", nil
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for passwords read from the terminal.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
