package records

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const maxIDAttempts = 8

// ErrIDExhausted is returned when every generated id collided.
var ErrIDExhausted = errors.New("could not generate a unique id")

// NewID returns prefix followed by a random token. exists is consulted for
// each candidate; a nil exists skips the check.
func NewID(prefix string, exists func(id string) bool) (string, error) {
	for range maxIDAttempts {
		id := prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
		if exists == nil || !exists(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
