package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gogithub "github.com/google/go-github/v60/github"
)

// ErrMissingCredential is returned when no token could be resolved from the
// call arguments, the configuration, or the environment.
var ErrMissingCredential = errors.New(
	"no GitHub token provided: pass a token argument, set github.token in the config, or export GITHUB_TOKEN",
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindUpstreamValidation
)

// APIError is the classified form of an upstream failure. Every error that a
// tool surfaces for a GitHub call passes through Classify exactly once.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Classify maps an upstream failure onto the fixed error taxonomy. The mapping
// is total: anything unrecognized, including timeouts and transport faults,
// becomes an internal error.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{
			Kind:       KindAuthorization,
			StatusCode: http.StatusForbidden,
			Message:    "forbidden: check permissions or rate limit",
		}
	}

	var ghErr *gogithub.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return &APIError{
				Kind:       KindAuthentication,
				StatusCode: http.StatusUnauthorized,
				Message:    "authentication failed: invalid or expired credential",
			}
		case http.StatusForbidden:
			return &APIError{
				Kind:       KindAuthorization,
				StatusCode: http.StatusForbidden,
				Message:    "forbidden: check permissions or rate limit",
			}
		case http.StatusNotFound:
			return &APIError{
				Kind:       KindNotFound,
				StatusCode: http.StatusNotFound,
				Message:    "resource not found",
			}
		case http.StatusUnprocessableEntity:
			return &APIError{
				Kind:       KindUpstreamValidation,
				StatusCode: http.StatusUnprocessableEntity,
				Message:    fmt.Sprintf("invalid request parameters: %s", ghErr.Message),
			}
		default:
			return &APIError{
				Kind:       KindInternal,
				StatusCode: ghErr.Response.StatusCode,
				Message:    fmt.Sprintf("GitHub API error: %s", ghErr.Message),
			}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{
			Kind:    KindInternal,
			Message: "GitHub API error: request timed out",
		}
	}

	return &APIError{
		Kind:    KindInternal,
		Message: fmt.Sprintf("GitHub API error: %v", err),
	}
}

// IsAccepted reports whether the upstream answered 202 Accepted, which
// go-github surfaces as an error even though the request was queued
// successfully (forks, run cancellations and re-runs do this).
func IsAccepted(err error) bool {
	var accepted *gogithub.AcceptedError
	return errors.As(err, &accepted)
}
