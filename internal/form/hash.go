package form

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost matches the cost used for stored password answers since the
// first release.
const DefaultHashCost = 10

// bcrypt ignores input past 72 bytes; newer x/crypto releases reject it.
const bcryptMaxInput = 72

// BcryptHasher hashes password answers with bcrypt.  Zero Cost means
// DefaultHashCost.
type BcryptHasher struct{ Cost int }

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultHashCost
	}
	b := []byte(plain)
	if len(b) > bcryptMaxInput {
		b = b[:bcryptMaxInput]
	}
	out, err := bcrypt.GenerateFromPassword(b, cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}
