package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong username/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrServiceUnavailable indicates an upstream dependency could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrEmptyCorpus indicates no document survived normalization during training
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrTitleNotFound indicates the queried title is not present in the title index
	ErrTitleNotFound = errors.New("title not found")

	// ErrArtifactNotFound indicates no complete artifact set has been trained yet
	ErrArtifactNotFound = errors.New("artifacts not found")

	// ErrArtifactMismatch indicates the stored artifacts disagree with each other
	// or with the live catalog they are being paired with
	ErrArtifactMismatch = errors.New("artifacts do not match corpus")

	// ErrTrainingInProgress indicates another training run holds the training lock
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrInternal wraps failures that have no more specific classification
	ErrInternal = errors.New("internal error")
)
