package domain

import "errors"

var (
	// ErrInvalidCredentials covers every credential failure on the login
	// path. Unknown email and wrong password deliberately share one error so
	// callers cannot distinguish them.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is an internal lookup miss. The auth service folds it
	// into ErrInvalidCredentials before it reaches a client.
	ErrUserNotFound = errors.New("user not found")

	ErrUserExists = errors.New("user already exists")

	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenConflict signals that a freshly generated token or session ID
	// collided with a stored one. The store retries with new randomness.
	ErrTokenConflict = errors.New("session token conflict")

	// ErrTokenExhausted is returned after the bounded retry budget for token
	// generation is spent without producing a unique value.
	ErrTokenExhausted = errors.New("session token generation exhausted")
)
