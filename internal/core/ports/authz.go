package ports

import "github.com/mapascal/records-system/internal/core/domain"

// Identity is the authenticated actor attached to a request.
type Identity struct {
	UserID string
	Role   domain.Role
}

// Decision is the closed outcome set of an authorization check. Callers must
// handle every variant; there is no implicit control-flow interception.
type Decision int

const (
	DecisionAllowed Decision = iota
	DecisionForbidden
	DecisionBadRequest
	DecisionNotFound
)

func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "allowed"
	case DecisionForbidden:
		return "forbidden"
	case DecisionBadRequest:
		return "bad_request"
	case DecisionNotFound:
		return "not_found"
	}
	return "unknown"
}
