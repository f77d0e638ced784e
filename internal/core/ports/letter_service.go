package ports

import (
	"context"
	"io"
	"time"

	"github.com/mapascal/records-system/internal/core/domain"
)

// FileUpload is a document submitted with a letter. Size is not tracked
// here; the request body cap at the HTTP edge bounds uploads.
type FileUpload struct {
	Name    string
	Content io.Reader
}

// CreateLetterInput carries all data needed to register a new letter.
type CreateLetterInput struct {
	Direction   domain.Direction
	Number      string
	Counterpart string
	Date        time.Time
	Subject     string
	File        FileUpload
	Actor       Identity
}

// UpdateLetterInput modifies an existing letter. File is optional; when set,
// the stored document is replaced and the old one removed.
type UpdateLetterInput struct {
	ID          string
	Direction   domain.Direction
	Number      string
	Counterpart string
	Date        time.Time
	Subject     string
	File        *FileUpload
	Actor       Identity
}

// ListLettersInput carries all parameters for the letter listing.
type ListLettersInput struct {
	Direction domain.Direction
	Actor     Identity
	Search    string
	SearchBy  string
	DateFrom  time.Time
	DateTo    time.Time
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ListLettersResult is returned by List.
type ListLettersResult struct {
	Items      []domain.Letter
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// LetterService defines use-case operations for correspondence records.
type LetterService interface {
	Create(ctx context.Context, input CreateLetterInput) (*domain.Letter, error)
	Get(ctx context.Context, actor Identity, direction domain.Direction, id string) (*domain.Letter, error)
	List(ctx context.Context, input ListLettersInput) (*ListLettersResult, error)
	Update(ctx context.Context, input UpdateLetterInput) (*domain.Letter, error)
	Delete(ctx context.Context, actor Identity, direction domain.Direction, id string) error
	// Download resolves the stored document of a letter to a filesystem path
	// and a user-facing attachment name.
	Download(ctx context.Context, actor Identity, direction domain.Direction, id string) (path, name string, err error)
}
