package domain

import "errors"

var (
	ErrValidation            = errors.New("validation")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrForbidden             = errors.New("forbidden")
	ErrFederatedTokenInvalid = errors.New("federated token invalid")
	ErrNotFound              = errors.New("not found")
	ErrReferentialIntegrity  = errors.New("referenced record does not exist")
	ErrConflict              = errors.New("conflict")
)
