package service

import "errors"

var (
	// ErrUnauthenticated means no actor is associated with the request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the actor's role does not permit the operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidCredentials is the generic login rejection. It never
	// discloses whether the email exists.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
