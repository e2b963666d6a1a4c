package core

import "errors"

var (
	// ErrUserNotFound is returned by stores when no user matches.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when an email is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrRoleNotFound is returned when no role matches.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleExists is returned when a role name is already taken.
	ErrRoleExists = errors.New("role already exists")

	// ErrInvitationNotFound is returned when no invitation matches.
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrInvalidStatus is returned for statuses outside active/inactive/suspended.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrNoChanges is returned when an update carries no fields.
	ErrNoChanges = errors.New("no changes supplied")

	// ErrInvalidInput is returned when bulk import input cannot be read as
	// CSV text: empty, not UTF-8, or rejected by the tokenizer.
	ErrInvalidInput = errors.New("invalid import input")
)
