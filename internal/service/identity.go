package service

import (
	"context"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/models"
	"slotbook/internal/token"
)

// IdentityResolver turns a bearer token into an Actor. Failures come
// back typed (token.ErrExpired, token.ErrMalformed, token.ErrUnknown,
// database.ErrUserDisabled) so the transport layer can surface the
// reason without inspecting the token itself.
type IdentityResolver struct {
	tokens *token.Manager
	store  domain.Store
}

func NewIdentityResolver(tokens *token.Manager, store domain.Store) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, store: store}
}

// ResolveBearer validates an access token and loads the member behind
// it. The returned actor is Guest whenever an error is returned.
func (r *IdentityResolver) ResolveBearer(ctx context.Context, raw string) (models.Actor, error) {
	claims, err := r.tokens.Validate(raw, token.KindAccess)
	if err != nil {
		return models.Guest, err
	}

	user, err := r.store.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return models.Guest, err
	}
	if !user.Enabled {
		return models.Guest, database.ErrUserDisabled
	}

	return models.Actor{Member: user}, nil
}
