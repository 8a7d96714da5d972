package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/models"
)

// Actor is the authenticated account performing a request. It is
// carried explicitly in the context; permission checks and audit
// records read it from there, never from package state.
type Actor struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  models.Role
}

type contextKey string

const actorKey contextKey = "actor"

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey).(*Actor)
	return a
}
