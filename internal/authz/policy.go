package authz

import (
	"errors"

	"cafeblog/internal/domain/account"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

type Operation string

const (
	OpCreatePost    Operation = "post.create"
	OpUpdatePost    Operation = "post.update"
	OpDeletePost    Operation = "post.delete"
	OpReadPost      Operation = "post.read"
	OpSearchPosts   Operation = "post.search"
	OpUpdateAccount Operation = "account.update"
	OpDeleteAccount Operation = "account.delete"
)

// Authorize evaluates whether the principal may run the operation against a
// resource owned by resourceOwnerID (empty when no target resource applies).
//
// Post update/delete is administrator-only; the author has no special
// standing. Account update/delete allows the administrator or the account
// holder themselves. Reads and searches are open to anyone, anonymous included.
func Authorize(p account.Principal, op Operation, resourceOwnerID string) error {
	switch op {
	case OpReadPost, OpSearchPosts:
		return nil

	case OpCreatePost:
		if p.IsAnonymous() {
			return ErrUnauthenticated
		}
		return nil

	case OpUpdatePost, OpDeletePost:
		if p.IsAnonymous() {
			return ErrUnauthenticated
		}
		if !p.HasRole(account.RoleAdmin) {
			return ErrForbidden
		}
		return nil

	case OpUpdateAccount, OpDeleteAccount:
		if p.IsAnonymous() {
			return ErrUnauthenticated
		}
		if p.HasRole(account.RoleAdmin) || p.UserID == resourceOwnerID {
			return nil
		}
		return ErrForbidden

	default:
		// unknown operations are never allowed
		return ErrForbidden
	}
}
