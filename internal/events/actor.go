package events

import "context"

type actorKey struct{}

// WithActor records the acting profile on ctx for events emitted downstream.
func WithActor(ctx context.Context, profileID string) context.Context {
	if profileID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, profileID)
}

// ActorFromContext returns the actor recorded by WithActor, or the system actor.
func ActorFromContext(ctx context.Context) Actor {
	if id, ok := ctx.Value(actorKey{}).(string); ok {
		return Actor{ProfileID: &id}
	}
	return Actor{}
}
