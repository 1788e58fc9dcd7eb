// Package policy holds the access rules for users and posts. Nothing here
// touches the store; callers fetch the resource first and then ask.
package policy

import (
	"fmt"

	"github.com/Skotchmaster/blog/internal/domain"
	"github.com/Skotchmaster/blog/internal/models"
)

func RequireRole(caller *models.User, role models.Role) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if caller.Role != role {
		return fmt.Errorf("%w: requires role %s", domain.ErrForbidden, role)
	}
	return nil
}

func RequireOwnerOrAdmin(caller *models.User, ownerID uint) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if caller.IsAdmin() || caller.ID == ownerID {
		return nil
	}
	return fmt.Errorf("%w: not the owner", domain.ErrForbidden)
}

// RequireSelfOrAdmin guards user records; a user's own record is theirs.
func RequireSelfOrAdmin(caller *models.User, userID uint) error {
	return RequireOwnerOrAdmin(caller, userID)
}

// CanReassignOwner reports whether caller may move a post from one owner to another.
func CanReassignOwner(caller *models.User, currentOwner, newOwner uint) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if currentOwner == newOwner {
		return nil
	}
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: only admins can reassign posts", domain.ErrForbidden)
	}
	return nil
}

// ListScope returns a nil scope when caller may see every record, otherwise the
// id results have to be restricted to. A missing caller sees nothing.
func ListScope(caller *models.User) (*uint, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if caller.IsAdmin() {
		return nil, nil
	}
	id := caller.ID
	return &id, nil
}
