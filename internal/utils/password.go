package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateTemporaryPassword returns a random password in the format
// XXXX-XXXX-XXXX-XXXX, used when an account is seeded without one.
func GenerateTemporaryPassword() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	hex := hex.EncodeToString(bytes)
	return fmt.Sprintf("%s-%s-%s-%s",
		hex[0:4],
		hex[4:8],
		hex[8:12],
		hex[12:16],
	), nil
}
