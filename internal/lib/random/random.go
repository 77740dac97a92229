// Package random generates opaque tokens. The strings carry no decodable
// structure, they are used purely as lookup keys.
package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// String returns a hex string of the requested length read from crypto/rand.
func String(length int) (string, error) {
	const op = "lib.random.String"

	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return hex.EncodeToString(buf)[:length], nil
}
