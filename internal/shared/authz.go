package shared

import "net/http"

// RoleGuard builds middleware that admits only actors holding one of roles.
type RoleGuard interface {
	RequireRole(roles ...string) func(http.Handler) http.Handler
}
