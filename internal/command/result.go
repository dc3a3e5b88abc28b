// Package command implements the mutating use cases. Every command walks the
// same path: validate the payload, resolve the target, ask the resource
// policy, mutate and persist inside the runner's transaction, and hand the
// resulting events to the dispatcher only after commit.
package command

import (
	"errors"

	"github.com/opsdesk/opsdesk/internal/authz"
	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/event"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

// Result is what every command returns to the presentation layer. Expected
// business outcomes (not found, denied, invalid) arrive here as a failed
// Result, never as a raised error.
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Code    apperror.Code          `json:"code,omitempty"`
}

func succeed(data map[string]interface{}) Result {
	return Result{Success: true, Data: data}
}

// failWith shapes any error into a failed Result with a classification the
// presentation layer can map onto its transport.
func failWith(err error) Result {
	res := Result{Success: false, Error: err.Error()}

	var authErr *authz.AuthorizationError
	var appErr *apperror.AppError
	var domErr *domain.DomainError
	switch {
	case errors.As(err, &authErr):
		res.Code = apperror.CodeForbidden
	case errors.As(err, &appErr):
		res.Code = appErr.Code
	case errors.As(err, &domErr):
		res.Code = apperror.CodeConflict
	default:
		res.Code = apperror.CodeInternal
	}
	return res
}

func failure(err error) (Result, []event.Event) {
	return failWith(err), nil
}
