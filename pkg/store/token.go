package store

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateToken draws length characters uniformly from charset using the
// system's cryptographic random source. Charsets are treated as sequences of
// characters, so multi-byte runes are legal.
func GenerateToken(length int, charset string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", length)
	}
	runes := []rune(charset)
	if len(runes) == 0 {
		return "", fmt.Errorf("token charset is empty")
	}

	size := big.NewInt(int64(len(runes)))
	out := make([]rune, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		out[i] = runes[n.Int64()]
	}
	return string(out), nil
}
