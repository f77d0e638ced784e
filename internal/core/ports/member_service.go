package ports

import (
	"context"

	"github.com/mapascal/records-system/internal/core/domain"
)

// RegisterInput carries a member self-registration submission.
type RegisterInput struct {
	Username        string
	Password        string
	FullName        string
	FieldName       string
	NIA             string
	MembershipLevel string
}

// MemberService covers registration and the admin-side member lifecycle.
type MemberService interface {
	// Register creates an inactive member account awaiting admin approval.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Members(ctx context.Context) ([]domain.User, error)
	PendingRegistrations(ctx context.Context) ([]domain.User, error)
	// Approve activates a pending member and issues their first access code.
	// The plaintext code is returned once for out-of-band delivery.
	Approve(ctx context.Context, userID string) (string, *domain.User, error)
	// ReissueToken replaces the access code of an active member.
	ReissueToken(ctx context.Context, userID string) (string, *domain.User, error)
}
