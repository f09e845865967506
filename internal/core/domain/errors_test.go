package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrAlreadyExists", ErrAlreadyExists, "already exists"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrForbidden", ErrForbidden, "forbidden"},
		{"ErrTokenExpired", ErrTokenExpired, "token expired"},
		{"ErrTokenInvalid", ErrTokenInvalid, "token invalid"},
		{"ErrSessionNotFound", ErrSessionNotFound, "session not found"},
		{"ErrInvalidCredentials", ErrInvalidCredentials, "invalid credentials"},
		{"ErrEmptyCorpus", ErrEmptyCorpus, "empty corpus"},
		{"ErrTitleNotFound", ErrTitleNotFound, "title not found"},
		{"ErrArtifactNotFound", ErrArtifactNotFound, "artifacts not found"},
		{"ErrTrainingInProgress", ErrTrainingInProgress, "training already in progress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrSessionNotFound,
		ErrInvalidCredentials,
		ErrServiceUnavailable,
		ErrEmptyCorpus,
		ErrTitleNotFound,
		ErrArtifactNotFound,
		ErrArtifactMismatch,
		ErrTrainingInProgress,
		ErrInternal,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("load idx_series: %w", ErrArtifactNotFound)
	if !errors.Is(wrapped, ErrArtifactNotFound) {
		t.Error("wrapped error should match ErrArtifactNotFound")
	}

	if errors.Is(wrapped, ErrTitleNotFound) {
		t.Error("wrapped error should not match ErrTitleNotFound")
	}
}
