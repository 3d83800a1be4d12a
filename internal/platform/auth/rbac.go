package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Role names recognized across the program.
const (
	RoleAdmin              = "Admin"
	RoleCountryCoordinator = "Country Coordinator"
	RoleCityCoordinator    = "City Coordinator"
	RoleClinician          = "Clinician"
	RoleDataEntry          = "Data Entry"
)

// RequireRole returns middleware that checks if the user has at least one of
// the specified roles. Admin always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required || has == RoleAdmin {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

var knownRoles = map[string]bool{
	RoleAdmin:              true,
	RoleCountryCoordinator: true,
	RoleCityCoordinator:    true,
	RoleClinician:          true,
	RoleDataEntry:          true,
}

// ValidRole reports whether name is one of the recognized roles.
func ValidRole(name string) bool {
	return knownRoles[name]
}

// HasRole reports whether the role list contains the given role or Admin.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role || r == RoleAdmin {
			return true
		}
	}
	return false
}

// LocationScopeFromContext returns the location ids the requester's reads
// are restricted to. Admin and users without assigned locations are
// unscoped (nil). Malformed ids in the token are skipped.
func LocationScopeFromContext(ctx context.Context) []uuid.UUID {
	if HasRole(RolesFromContext(ctx), RoleAdmin) {
		return nil
	}
	var scope []uuid.UUID
	for _, raw := range LocationIDsFromContext(ctx) {
		if id, err := uuid.Parse(raw); err == nil {
			scope = append(scope, id)
		}
	}
	return scope
}
