package services

import (
	"context"
	"fmt"

	"invoice-system/internal/entities"
	apperrors "invoice-system/pkg/errors"
	"invoice-system/pkg/utils"
)

// IdentityProviderInterface resolves who is acting on the current request.
// Callers resolve once per mutating request and pass the Actor down explicitly.
type IdentityProviderInterface interface {
	ResolveCurrentUser(ctx context.Context) (entities.Actor, error)
}

type ContextIdentityProvider struct{}

func NewContextIdentityProvider() IdentityProviderInterface {
	return &ContextIdentityProvider{}
}

// ResolveCurrentUser reads the user id the auth middleware stored in ctx.
func (p *ContextIdentityProvider) ResolveCurrentUser(ctx context.Context) (entities.Actor, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return entities.Actor{}, fmt.Errorf("%w: %v", apperrors.ErrUnresolvedIdentity, err)
	}
	return entities.UserActor(userID), nil
}
