package subscriptions

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// tokenAlphabet keeps tokens URL-safe without escaping.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// tokenLength at 25 alphanumerics gives ~148 bits of entropy, far beyond
// brute-force reach for a value that proves control of an inbox.
const tokenLength = 25

// GenerateToken returns a cryptographically random confirmation token.
// Tokens are deliberately not UUIDs: they are capability values, not
// identifiers, and must not be guessable from other system state.
func GenerateToken() (string, error) {
	alphabetSize := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, tokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generating confirmation token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
