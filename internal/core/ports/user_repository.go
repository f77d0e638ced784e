package ports

import (
	"context"

	"github.com/mapascal/records-system/internal/core/domain"
)

// UserRepository defines the persistence contract for user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindAdminByIdentifier matches an admin whose username or NIA equals
	// the identifier.
	FindAdminByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// FindMemberByNIA matches a member account by its NIA.
	FindMemberByNIA(ctx context.Context, nia string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// ListMembers returns all member accounts ordered by full name.
	ListMembers(ctx context.Context) ([]domain.User, error)
	// ListPendingMembers returns inactive member accounts, newest first.
	ListPendingMembers(ctx context.Context) ([]domain.User, error)
}
