package gapi

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// ServiceBuildError indicates that an authenticated Google service client
// could not be constructed.
type ServiceBuildError struct {
	Service string
	Err     error
}

func (e *ServiceBuildError) Error() string {
	return fmt.Sprintf("failed to build %s service: %v", e.Service, e.Err)
}

func (e *ServiceBuildError) Unwrap() error {
	return e.Err
}

// RemoteAPIError carries the HTTP status and message of a failed Google API
// call. Err keeps the underlying error reachable, so auth-rejection checks
// can still see the reason items of a 403.
type RemoteAPIError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("google api error (HTTP %d): %s", e.Status, e.Message)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates that a referenced resource does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// InvalidArgumentError indicates a caller-supplied value that cannot be used,
// detected before or while building the remote request.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// WrapGoogle maps a googleapi error to the local taxonomy. A 404 becomes a
// NotFoundError for the given resource kind and ID, every other API error
// becomes a RemoteAPIError. Non-googleapi errors pass through unchanged.
func WrapGoogle(kind, id string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	if gerr.Code == 404 {
		return &NotFoundError{Kind: kind, ID: id}
	}

	return &RemoteAPIError{Status: gerr.Code, Message: gerr.Message, Err: err}
}

// IsAuthRejected reports whether err is the remote side rejecting our
// credentials: HTTP 401, or HTTP 403 with an auth-flavored reason. A plain
// 403 (for example an insufficient-permission response to a valid token on
// the wrong resource) is not an auth rejection.
func IsAuthRejected(err error) bool {
	if err == nil {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 401:
			return true
		case 403:
			for _, item := range gerr.Errors {
				if item.Reason == "authError" || item.Reason == "unauthorized" {
					return true
				}
			}
			return strings.Contains(strings.ToLower(gerr.Message), "invalid credentials")
		}
		return false
	}

	var rerr *RemoteAPIError
	if errors.As(err, &rerr) {
		return rerr.Status == 401
	}

	return false
}
