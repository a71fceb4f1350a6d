// Package auth gates operator-only actions. Authorization here is a
// single trusted account configured at startup, not a role system.
package auth

import "github.com/otabekh/minbar/internal/domain"

type Operator struct {
	ID int64
}

// Require returns an error unless userID is the configured operator.
func (o Operator) Require(userID int64) error {
	if userID != o.ID {
		return &domain.AuthorizationError{UserID: userID}
	}
	return nil
}

// Is reports whether userID is the configured operator.
func (o Operator) Is(userID int64) bool {
	return userID == o.ID
}
