package domain

import "errors"

// Domain outcomes. These are expected branches of normal operation, not
// failures: they are returned as error values so callers can branch with
// errors.Is, and anything that is not one of them is an infrastructure
// failure.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotOwner           = errors.New("not the room owner")
	ErrAlreadyMember      = errors.New("already a member")
	ErrInvalidCode        = errors.New("invalid invitation code")
	ErrNotMember          = errors.New("not a member")
	ErrOwnerCannotLeave   = errors.New("owner cannot leave the room")
	ErrInvalidInput       = errors.New("invalid input")
)
