// Package v1 provides session, authentication and room-membership business
// logic for API version 1.
//
// Error Handling:
// Domain outcomes (not logged in, not owner, already a member, ...) are
// sentinel errors declared in internal/core/domain and re-exported here.
// They are wrapped with context using fmt.Errorf("%w") and are expected
// branches of normal operation. Any other error is an infrastructure failure
// (pool exhaustion, transaction failure, hashing failure) and must be reported
// to the client as an opaque internal error.
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrNotOwner):
//	    c.JSON(http.StatusUnauthorized, gin.H{"status": "NotOwner"})
//	case errors.Is(err, logicv1.ErrAlreadyMember):
//	    c.JSON(http.StatusConflict, gin.H{"status": "AlreadyMember"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"status": "InternalServerError"})
//	}
package v1

import (
	"errors"

	"github.com/duynhne/room-service/internal/core/domain"
)

// Sentinel errors for session, auth and room operations.
var (
	// ErrUserExists indicates the email is already registered.
	// HTTP Status: 409 Conflict
	ErrUserExists = domain.ErrUserExists

	// ErrUserNotFound indicates no user is registered with the email.
	// HTTP Status: 406 Not Acceptable
	ErrUserNotFound = domain.ErrUserNotFound

	// ErrInvalidCredentials indicates the password does not match.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = domain.ErrInvalidCredentials

	// ErrNotLoggedIn indicates the caller has no usable session token.
	// HTTP Status: 401 Unauthorized
	ErrNotLoggedIn = domain.ErrNotLoggedIn

	// ErrSessionNotFound indicates a revoke for a token with no session.
	// HTTP Status: 200 OK (logout is idempotent)
	ErrSessionNotFound = domain.ErrSessionNotFound

	// ErrNotOwner indicates the caller does not own the room, or the room
	// does not exist.
	// HTTP Status: 401 Unauthorized
	ErrNotOwner = domain.ErrNotOwner

	// ErrAlreadyMember indicates the caller is already in the room.
	// HTTP Status: 409 Conflict
	ErrAlreadyMember = domain.ErrAlreadyMember

	// ErrInvalidCode indicates the invitation code resolves to no room.
	// HTTP Status: 404 Not Found
	ErrInvalidCode = domain.ErrInvalidCode

	// ErrNotMember indicates the caller is not in the room.
	// HTTP Status: 400 Bad Request
	ErrNotMember = domain.ErrNotMember

	// ErrOwnerCannotLeave indicates the owner tried to leave their own room.
	// HTTP Status: 400 Bad Request
	ErrOwnerCannotLeave = domain.ErrOwnerCannotLeave

	// ErrInvalidInput indicates a request that fails validation.
	// HTTP Status: 400 Bad Request
	ErrInvalidInput = domain.ErrInvalidInput
)

// Outcome names as reported to clients in the "status" field.
const (
	OutcomeSuccess             = "Success"
	OutcomeUserAlreadyExists   = "UserAlreadyExists"
	OutcomeUserDoesNotExist    = "UserDoesNotExist"
	OutcomeInvalidCredentials  = "InvalidCredentials"
	OutcomeNotLoggedIn         = "NotLoggedIn"
	OutcomeNotOwner            = "NotOwner"
	OutcomeAlreadyMember       = "AlreadyMember"
	OutcomeInvalidCode         = "InvalidCode"
	OutcomeNotMember           = "NotMember"
	OutcomeOwnerCannotLeave    = "OwnerCannotLeave"
	OutcomeInvalidInput        = "InvalidInput"
	OutcomeInternalServerError = "InternalServerError"
)

var outcomeNames = []struct {
	err  error
	name string
}{
	{ErrUserExists, OutcomeUserAlreadyExists},
	{ErrUserNotFound, OutcomeUserDoesNotExist},
	{ErrInvalidCredentials, OutcomeInvalidCredentials},
	{ErrNotLoggedIn, OutcomeNotLoggedIn},
	{ErrSessionNotFound, OutcomeNotLoggedIn},
	{ErrNotOwner, OutcomeNotOwner},
	{ErrAlreadyMember, OutcomeAlreadyMember},
	{ErrInvalidCode, OutcomeInvalidCode},
	{ErrNotMember, OutcomeNotMember},
	{ErrOwnerCannotLeave, OutcomeOwnerCannotLeave},
	{ErrInvalidInput, OutcomeInvalidInput},
}

// Outcome names the result of an operation: Success for nil, the outcome
// name for a domain outcome, InternalServerError for anything else.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	for _, o := range outcomeNames {
		if errors.Is(err, o.err) {
			return o.name
		}
	}
	return OutcomeInternalServerError
}

// IsOutcome reports whether err is an expected domain outcome rather than an
// infrastructure failure.
func IsOutcome(err error) bool {
	o := Outcome(err)
	return o != OutcomeSuccess && o != OutcomeInternalServerError
}
