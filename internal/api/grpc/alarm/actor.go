package alarm

import (
	"context"

	"google.golang.org/grpc/metadata"

	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
)

// Metadata keys carrying the caller identity.
const (
	actorHostnameKey = "x-actor-hostname"
	actorUsernameKey = "x-actor-username"
)

// WithActor attaches actor to outgoing RPC metadata.
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		actorHostnameKey, actor.Hostname,
		actorUsernameKey, actor.Username,
	)
}

// ActorFromContext reads the caller identity from incoming metadata.
// It returns nil when the caller did not send one.
func ActorFromContext(ctx context.Context) *domain.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	hostnames, usernames := md.Get(actorHostnameKey), md.Get(actorUsernameKey)
	if len(hostnames) == 0 && len(usernames) == 0 {
		return nil
	}

	actor := new(domain.Actor)

	if len(hostnames) > 0 {
		actor.Hostname = hostnames[0]
	}

	if len(usernames) > 0 {
		actor.Username = usernames[0]
	}

	return actor
}
