// Package apierror defines errors that are safe to return to API clients.
package apierror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// APIError is an error carrying the gRPC code and the client-facing message.
type APIError struct {
	GRPCCode codes.Code
	Message  string
	cause    error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// As extracts an APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewErrEmailIsTaken(email string) *APIError {
	return &APIError{
		GRPCCode: codes.AlreadyExists,
		Message:  fmt.Sprintf("email %s is already taken", email),
	}
}

func NewErrInvalidCredentials() *APIError {
	return &APIError{
		GRPCCode: codes.Unauthenticated,
		Message:  "invalid login credentials",
	}
}

func NewErrValidation(message string) *APIError {
	return &APIError{
		GRPCCode: codes.InvalidArgument,
		Message:  message,
	}
}

func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{
		GRPCCode: codes.Unauthenticated,
		Message:  "missing authorization token",
	}
}

func NewErrInvalidAuthorizationToken() *APIError {
	return &APIError{
		GRPCCode: codes.Unauthenticated,
		Message:  "invalid authorization token",
	}
}

func NewErrInvalidRefreshToken(cause error) *APIError {
	return &APIError{
		GRPCCode: codes.Unauthenticated,
		Message:  "invalid refresh token",
		cause:    cause,
	}
}

func NewErrSessionNotFound() *APIError {
	return &APIError{
		GRPCCode: codes.Unauthenticated,
		Message:  "session not found",
	}
}

func NewErrProductNotFound(id int64) *APIError {
	return &APIError{
		GRPCCode: codes.NotFound,
		Message:  fmt.Sprintf("product %d not found", id),
	}
}

func NewErrImageNotFound(name string) *APIError {
	return &APIError{
		GRPCCode: codes.NotFound,
		Message:  fmt.Sprintf("image %s not found", name),
	}
}

func NewErrInternalServerError(cause error) *APIError {
	return &APIError{
		GRPCCode: codes.Internal,
		Message:  "internal server error",
		cause:    cause,
	}
}
