package auth

import (
	"context"
	"strings"

	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
)

var (
	_ ports.Identity = Static{}
	_ ports.Identity = Anonymous{}
	_ ports.Identity = RequestIdentity{}
)

// Static is signed in as a fixed user, or not at all when the user is empty.
type Static struct {
	User models.User
}

// FromConfig returns the identity configured under "user".
func FromConfig(cfg *config.Config) Static {
	name := strings.TrimSpace(cfg.User.Name)
	email := strings.TrimSpace(cfg.User.Email)
	id := email
	if id == "" {
		id = name
	}
	return Static{User: models.User{ID: id, Name: name, Email: email}}
}

func (s Static) CurrentUser(context.Context) (*models.User, bool) {
	if s.User.ID == "" {
		return nil, false
	}
	u := s.User
	return &u, true
}

// Anonymous is never signed in.
type Anonymous struct{}

func (Anonymous) CurrentUser(context.Context) (*models.User, bool) {
	return nil, false
}

type userKey struct{}

// WithUser attaches the signed-in user to ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the user set by WithUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// RequestIdentity reads the user the HTTP middleware stored in the request context.
type RequestIdentity struct{}

func (RequestIdentity) CurrentUser(ctx context.Context) (*models.User, bool) {
	return UserFromContext(ctx)
}
