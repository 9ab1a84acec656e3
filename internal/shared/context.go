package shared

import "context"

// Roles understood by the API.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Actor identifies the authenticated user behind a request.
type Actor struct {
	UserID int64
	Email  string
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
