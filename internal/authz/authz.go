// Package authz holds the request-time authorization policy. Authentication
// upstream is optional; these checks decide whether the resolved principal,
// if any, may act on the target resource.
package authz

import "errors"

var (
	ErrUpdateForbidden = errors.New("not authorized to update user")
	ErrDeleteForbidden = errors.New("not authorized to delete user")
)

// CanUpdateUser allows an update only when a principal is present and it is
// the target user itself.
func CanUpdateUser(principal int64, authenticated bool, targetID int64) error {
	if !authenticated || principal != targetID {
		return ErrUpdateForbidden
	}
	return nil
}

// CanDeleteUser mirrors CanUpdateUser with its own denial.
func CanDeleteUser(principal int64, authenticated bool, targetID int64) error {
	if !authenticated || principal != targetID {
		return ErrDeleteForbidden
	}
	return nil
}
