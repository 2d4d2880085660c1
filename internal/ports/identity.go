package ports

import (
	"context"

	"github.com/thomas-vilte/promptforge/internal/models"
)

// Identity reports who is signed in, if anyone.
type Identity interface {
	CurrentUser(ctx context.Context) (*models.User, bool)
}
