package models

import "errors"

// Application-wide standard errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrStoryNotFound = errors.New("story not found")
	ErrUserNotFound  = errors.New("user not found")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrInvalidInput      = errors.New("invalid input data")
	ErrInvalidPackage    = errors.New("invalid coin package")
	ErrNoUnusedSeeds     = errors.New("no unused seeds left")
	ErrInsufficientCoins = errors.New("not enough coins")

	// ErrExternalService wraps failures of the LLM, payment provider or storage.
	ErrExternalService = errors.New("external service failure")
)
