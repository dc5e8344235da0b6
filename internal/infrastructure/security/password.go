package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
)

// DefaultBcryptCost is tuned so a single verify lands in low tens of
// milliseconds on current hardware.
const DefaultBcryptCost = 12

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher builds the production password hasher. Costs outside
// bcrypt's valid range fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) interfaces.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

func (h *bcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

var _ interfaces.PasswordHasher = (*bcryptHasher)(nil)
