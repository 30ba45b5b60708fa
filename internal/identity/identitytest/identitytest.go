// Package identitytest provides fixed identity providers for tests.
package identitytest

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/models"
)

// Static always returns the same user; nil means unauthenticated.
type Static struct {
	User *models.User
}

func (s Static) CurrentUser(context.Context) (*models.User, error) {
	if s.User == nil {
		return nil, fmt.Errorf("%w: no user", common.ErrNotAuthenticated)
	}
	u := *s.User
	return &u, nil
}

// User is a Static provider for id.
func User(id string) Static {
	return Static{User: &models.User{ID: id, Email: id + "@example.com"}}
}
