package ports

import "context"

// PendingLoginStore holds the transient marker between a member's primary
// credential success and their access-code verification. The marker is
// short-lived, never grants access by itself, and expires on abandonment.
type PendingLoginStore interface {
	Put(ctx context.Context, userID string) error
	Exists(ctx context.Context, userID string) (bool, error)
	Delete(ctx context.Context, userID string) error
}
