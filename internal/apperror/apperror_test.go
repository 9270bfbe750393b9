package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("User"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("User"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("no token"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "PublishFailed wraps ErrPublish",
			err:       PublishFailed(errors.New("broker down")),
			target:    ErrPublish,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrConflict",
			err:       NotFound("User"),
			target:    ErrConflict,
			wantMatch: false,
		},
		{
			name:      "PublishFailed does NOT match ErrNotFound",
			err:       PublishFailed(errors.New("broker down")),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

// Matching still works when a service wraps the domain error with context.
func TestErrorsIs_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("incrementing score: %w", Conflict("User"))

	if !errors.Is(wrapped, ErrConflict) {
		t.Error("wrapped Conflict should still match ErrConflict")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should extract the AppError from the chain")
	}
	if appErr.Message != "Conflict: User data has been modified" {
		t.Errorf("Message = %q, want the conflict message", appErr.Message)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound names the resource",
			err:         NotFound("User"),
			wantMessage: "User not found",
		},
		{
			name:        "Conflict uses the optimistic-lock phrasing",
			err:         Conflict("User"),
			wantMessage: "Conflict: User data has been modified",
		},
		{
			name:        "ValidationFailed uses the custom message",
			err:         ValidationFailed("name", "Name should be at least 3 characters long"),
			wantMessage: "Name should be at least 3 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("githubLink", "Invalid github link")

	if err.Field != "githubLink" {
		t.Errorf("Field = %q, want %q", err.Field, "githubLink")
	}
}
