// Package identity supplies the current user to the storage layer. Nothing
// here mutates identity; providers only answer "who is calling".
package identity

import (
	"context"

	"github.com/dmitrijs2005/nutrilog/internal/models"
)

// LocalUserID owns all data in local mode.
const LocalUserID = "local"

// Provider returns the authenticated user, or an error wrapping
// common.ErrNotAuthenticated.
type Provider interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Local is the fixed device user.
type Local struct{}

func (Local) CurrentUser(context.Context) (*models.User, error) {
	return &models.User{ID: LocalUserID}, nil
}
