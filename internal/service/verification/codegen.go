package verification

import (
	"crypto/rand"
	"fmt"
)

// generateCode returns a random numeric code of the given length.
// Codes are short-lived secrets, the tiny modulo bias of byte%10 is fine here.
func generateCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error while generating verification code. Err: %w", err)
	}

	for i := range b {
		b[i] = '0' + b[i]%10
	}

	return string(b), nil
}
