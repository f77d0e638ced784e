package ports

import (
	"context"
	"time"

	"github.com/mapascal/records-system/internal/core/domain"
)

// LetterFilter narrows and orders a letter listing. OwnerID, when non-empty,
// restricts results to a single uploader.
type LetterFilter struct {
	Direction domain.Direction
	OwnerID   string
	Search    string
	SearchBy  string
	DateFrom  time.Time
	DateTo    time.Time
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// LetterRepository defines the persistence contract for correspondence records.
type LetterRepository interface {
	Create(ctx context.Context, letter *domain.Letter) (*domain.Letter, error)
	FindByID(ctx context.Context, direction domain.Direction, id string) (*domain.Letter, error)
	Update(ctx context.Context, letter *domain.Letter) error
	Delete(ctx context.Context, direction domain.Direction, id string) error
	List(ctx context.Context, filter LetterFilter) ([]domain.Letter, int64, error)
}
