package auth

import "context"

type actorKey struct{}

// Actor is the authenticated user behind a request
type Actor struct {
	ID   uint
	Role string
}

// WithActor stores the actor in ctx
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// ActorID returns a pointer to the actor id, nil for system calls
func ActorID(ctx context.Context) *uint {
	if actor, ok := ActorFrom(ctx); ok && actor.ID != 0 {
		id := actor.ID
		return &id
	}
	return nil
}
