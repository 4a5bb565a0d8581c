// Package identity extracts the authenticated actor the external auth
// collaborator attaches to every request.
package identity

import (
	"net/http"

	"vendly/internal/domain"
	"vendly/internal/errors"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

func FromRequest(r *http.Request) (domain.Actor, error) {
	id := r.Header.Get(HeaderUserID)
	role := domain.Role(r.Header.Get(HeaderUserRole))

	var details []errors.ValidationDetail
	if id == "" {
		details = append(details, errors.ValidationDetail{Field: HeaderUserID, Message: "user id header is required"})
	}
	if role != domain.RoleClient && role != domain.RoleVendor {
		details = append(details, errors.ValidationDetail{Field: HeaderUserRole, Message: "role must be client or vendor"})
	}
	if len(details) > 0 {
		return domain.Actor{}, errors.NewValidationError("invalid identity headers", details...)
	}
	return domain.Actor{ID: id, Role: role}, nil
}
