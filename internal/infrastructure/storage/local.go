// Package storage persists uploaded letter documents on the local
// filesystem, one subdirectory per letter direction.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/mapascal/records-system/internal/core/domain"
)

// sniffLen is how much of the upload is inspected to determine its type.
const sniffLen = 3072

// allowedMIMEs is the upload allow-list: PDF, DOCX, and JPEG.
var allowedMIMEs = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"image/jpeg": {},
}

// LocalStore writes uploads under root/<direction>/ with UUID-prefixed
// names so concurrent uploads of the same filename never collide.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	for _, d := range []domain.Direction{domain.DirectionIncoming, domain.DirectionOutgoing} {
		if err := os.MkdirAll(filepath.Join(root, string(d)), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &LocalStore{root: root}, nil
}

// Save sniffs the content type from the first bytes, rejects disallowed
// files, and streams the upload to disk. The returned name is the stored
// name to record on the letter.
func (s *LocalStore) Save(direction domain.Direction, filename string, content io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	if _, ok := allowedMIMEs[mimetype.Detect(head).String()]; !ok {
		return "", domain.ErrFileTypeNotAllowed
	}

	name := uuid.NewString() + "_" + sanitizeFilename(filename)
	path := filepath.Join(s.root, string(direction), name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), content)); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored document. A missing file is not an error.
func (s *LocalStore) Remove(direction domain.Direction, name string) error {
	err := os.Remove(s.Path(direction, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Path resolves a stored name to its filesystem path.
func (s *LocalStore) Path(direction domain.Direction, name string) string {
	return filepath.Join(s.root, string(direction), filepath.Base(name))
}

// sanitizeFilename keeps only the base name and replaces anything outside
// [A-Za-z0-9._-] so the stored name is safe as a path component.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		out = "upload"
	}
	return out
}
