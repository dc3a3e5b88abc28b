package authz

import (
	"errors"
	"fmt"

	"github.com/opsdesk/opsdesk/internal/domain"
)

// AuthorizationError reports a denied action. It carries enough context for
// the presentation layer to render a specific message and for diagnostics,
// without the core deciding how much of it to expose.
type AuthorizationError struct {
	Actor        *domain.Actor
	Action       string
	ResourceType string
	ResourceID   string
	Reason       string
}

func (e *AuthorizationError) Error() string {
	actor := "anonymous"
	if e.Actor != nil {
		actor = fmt.Sprintf("%s (%s)", e.Actor.ID, e.Actor.Role)
	}
	msg := fmt.Sprintf("authorization denied: actor %s may not %s %s", actor, e.Action, e.ResourceType)
	if e.ResourceID != "" {
		msg += " " + e.ResourceID
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsAuthorizationError reports whether err is an authorization denial.
func IsAuthorizationError(err error) bool {
	var authErr *AuthorizationError
	return errors.As(err, &authErr)
}

func deny(actor *domain.Actor, action, resourceType, resourceID, reason string) error {
	return &AuthorizationError{
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Reason:       reason,
	}
}
