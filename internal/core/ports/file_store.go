package ports

import (
	"io"

	"github.com/mapascal/records-system/internal/core/domain"
)

// FileStore persists uploaded letter documents. Save sniffs the content type
// and rejects disallowed files with domain.ErrFileTypeNotAllowed; the
// returned name is the unique stored name to keep on the letter record.
type FileStore interface {
	Save(direction domain.Direction, filename string, content io.Reader) (string, error)
	Remove(direction domain.Direction, name string) error
	Path(direction domain.Direction, name string) string
}
