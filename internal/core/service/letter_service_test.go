package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

type stubLetterRepo struct {
	letters    map[string]*domain.Letter
	nextID     int
	lastFilter ports.LetterFilter
	createErr  error
}

func newStubLetterRepo() *stubLetterRepo {
	return &stubLetterRepo{letters: make(map[string]*domain.Letter)}
}

func cloneLetter(l *domain.Letter) *domain.Letter {
	if l == nil {
		return nil
	}
	clone := *l
	return &clone
}

func (r *stubLetterRepo) Create(_ context.Context, letter *domain.Letter) (*domain.Letter, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, l := range r.letters {
		if l.Direction == letter.Direction && l.Number == letter.Number {
			return nil, domain.ErrDuplicateLetter
		}
	}
	copy := cloneLetter(letter)
	r.nextID++
	copy.ID = "l" + strconv.Itoa(r.nextID)
	r.letters[copy.ID] = cloneLetter(copy)
	return cloneLetter(copy), nil
}

func (r *stubLetterRepo) FindByID(_ context.Context, direction domain.Direction, id string) (*domain.Letter, error) {
	if l, ok := r.letters[id]; ok && l.Direction == direction {
		return cloneLetter(l), nil
	}
	return nil, domain.ErrLetterNotFound
}

func (r *stubLetterRepo) Update(_ context.Context, letter *domain.Letter) error {
	if _, ok := r.letters[letter.ID]; !ok {
		return domain.ErrLetterNotFound
	}
	r.letters[letter.ID] = cloneLetter(letter)
	return nil
}

func (r *stubLetterRepo) Delete(_ context.Context, direction domain.Direction, id string) error {
	if l, ok := r.letters[id]; ok && l.Direction == direction {
		delete(r.letters, id)
		return nil
	}
	return domain.ErrLetterNotFound
}

func (r *stubLetterRepo) List(_ context.Context, filter ports.LetterFilter) ([]domain.Letter, int64, error) {
	r.lastFilter = filter
	var out []domain.Letter
	for _, l := range r.letters {
		if l.Direction != filter.Direction {
			continue
		}
		if filter.OwnerID != "" && l.UploadedBy != filter.OwnerID {
			continue
		}
		out = append(out, *cloneLetter(l))
	}
	return out, int64(len(out)), nil
}

// memFileStore records saves and removals without touching disk.
type memFileStore struct {
	saved   []string
	removed []string
}

func (s *memFileStore) Save(_ domain.Direction, filename string, _ io.Reader) (string, error) {
	name := "stored_" + strconv.Itoa(len(s.saved)) + "_" + filename
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *memFileStore) Remove(_ domain.Direction, name string) error {
	s.removed = append(s.removed, name)
	return nil
}

func (s *memFileStore) Path(direction domain.Direction, name string) string {
	return "/uploads/" + string(direction) + "/" + name
}

func TestLetterCreate_MemberForbidden(t *testing.T) {
	svc := NewLetterService(newStubLetterRepo(), &memFileStore{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateLetterInput{
		Direction: domain.DirectionIncoming,
		Number:    "001/SM/2026",
		Actor:     ports.Identity{UserID: "u1", Role: domain.RoleMember},
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member create, got %v", err)
	}
}

func TestLetterCreate_AdminStoresFileAndRecord(t *testing.T) {
	repo := newStubLetterRepo()
	files := &memFileStore{}
	svc := NewLetterService(repo, files, zerolog.Nop())

	letter, err := svc.Create(context.Background(), ports.CreateLetterInput{
		Direction:   domain.DirectionIncoming,
		Number:      "001/SM/2026",
		Counterpart: "Dinas Pemuda",
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Subject:     "Undangan rapat koordinasi",
		File:        ports.FileUpload{Name: "undangan.pdf", Content: strings.NewReader("%PDF-1.4")},
		Actor:       ports.Identity{UserID: "admin1", Role: domain.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if letter.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if letter.UploadedBy != "admin1" {
		t.Fatalf("expected uploader to be recorded, got %q", letter.UploadedBy)
	}
	if len(files.saved) != 1 {
		t.Fatalf("expected one stored file, got %d", len(files.saved))
	}
	if letter.FileName != files.saved[0] {
		t.Fatalf("record must reference the stored name")
	}
}

func TestLetterCreate_RepoFailureRemovesUpload(t *testing.T) {
	repo := newStubLetterRepo()
	repo.createErr = domain.ErrDuplicateLetter
	files := &memFileStore{}
	svc := NewLetterService(repo, files, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateLetterInput{
		Direction: domain.DirectionIncoming,
		Number:    "001/SM/2026",
		File:      ports.FileUpload{Name: "undangan.pdf", Content: strings.NewReader("%PDF-1.4")},
		Actor:     ports.Identity{UserID: "admin1", Role: domain.RoleAdmin},
	})
	if !errors.Is(err, domain.ErrDuplicateLetter) {
		t.Fatalf("expected ErrDuplicateLetter, got %v", err)
	}
	if len(files.removed) != 1 {
		t.Fatalf("orphaned upload should be removed, got %v", files.removed)
	}
}

func TestLetterGet_OwnershipEnforced(t *testing.T) {
	repo := newStubLetterRepo()
	svc := NewLetterService(repo, &memFileStore{}, zerolog.Nop())
	created := seedLetter(t, repo, "001/SM/2026", "admin1")

	// The uploader reads their own record.
	if _, err := svc.Get(context.Background(), ports.Identity{UserID: "admin1", Role: domain.RoleMember}, domain.DirectionIncoming, created.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}

	// Another member is forbidden; an admin is not.
	if _, err := svc.Get(context.Background(), ports.Identity{UserID: "u2", Role: domain.RoleMember}, domain.DirectionIncoming, created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := svc.Get(context.Background(), ports.Identity{UserID: "other-admin", Role: domain.RoleAdmin}, domain.DirectionIncoming, created.ID); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
}

func TestLetterGet_MissingID(t *testing.T) {
	svc := NewLetterService(newStubLetterRepo(), &memFileStore{}, zerolog.Nop())

	_, err := svc.Get(context.Background(), ports.Identity{UserID: "admin1", Role: domain.RoleAdmin}, domain.DirectionIncoming, "")
	if !errors.Is(err, domain.ErrMissingResourceID) {
		t.Fatalf("expected ErrMissingResourceID, got %v", err)
	}
}

func TestLetterGet_WrongDirectionNotFound(t *testing.T) {
	repo := newStubLetterRepo()
	svc := NewLetterService(repo, &memFileStore{}, zerolog.Nop())
	created := seedLetter(t, repo, "001/SM/2026", "admin1")

	_, err := svc.Get(context.Background(), ports.Identity{UserID: "admin1", Role: domain.RoleAdmin}, domain.DirectionOutgoing, created.ID)
	if !errors.Is(err, domain.ErrLetterNotFound) {
		t.Fatalf("expected ErrLetterNotFound across directions, got %v", err)
	}
}

func TestLetterList_MemberScopedToOwnRecords(t *testing.T) {
	repo := newStubLetterRepo()
	svc := NewLetterService(repo, &memFileStore{}, zerolog.Nop())
	seedLetter(t, repo, "001/SM/2026", "admin1")
	seedLetter(t, repo, "002/SM/2026", "u2")

	res, err := svc.List(context.Background(), ports.ListLettersInput{
		Direction: domain.DirectionIncoming,
		Actor:     ports.Identity{UserID: "u2", Role: domain.RoleMember},
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastFilter.OwnerID != "u2" {
		t.Fatalf("member listing must be owner-scoped, filter: %+v", repo.lastFilter)
	}
	if len(res.Items) != 1 || res.Items[0].UploadedBy != "u2" {
		t.Fatalf("expected only own records, got %+v", res.Items)
	}

	// Admins see everything.
	res, err = svc.List(context.Background(), ports.ListLettersInput{
		Direction: domain.DirectionIncoming,
		Actor:     ports.Identity{UserID: "admin1", Role: domain.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastFilter.OwnerID != "" {
		t.Fatalf("admin listing must not be owner-scoped")
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected both records for admin, got %d", len(res.Items))
	}
}

func TestLetterList_WhitelistFallbacksAndClamping(t *testing.T) {
	repo := newStubLetterRepo()
	svc := NewLetterService(repo, &memFileStore{}, zerolog.Nop())

	_, err := svc.List(context.Background(), ports.ListLettersInput{
		Direction: domain.DirectionIncoming,
		Actor:     ports.Identity{UserID: "admin1", Role: domain.RoleAdmin},
		SearchBy:  "uploaded_by",
		SortBy:    "password_hash",
		SortOrder: "sideways",
		Page:      -3,
		Limit:     5000,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	f := repo.lastFilter
	if f.SearchBy != "number" {
		t.Fatalf("expected search_by fallback to number, got %q", f.SearchBy)
	}
	if f.SortBy != "date" || f.SortOrder != "desc" {
		t.Fatalf("expected sort fallback to date desc, got %q %q", f.SortBy, f.SortOrder)
	}
	if f.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", f.Page)
	}
	if f.Limit != maxPageSize {
		t.Fatalf("expected limit clamped to %d, got %d", maxPageSize, f.Limit)
	}
}

func TestLetterUpdate_ReplacesFile(t *testing.T) {
	repo := newStubLetterRepo()
	files := &memFileStore{}
	svc := NewLetterService(repo, files, zerolog.Nop())
	created := seedLetter(t, repo, "001/SM/2026", "admin1")
	oldName := created.FileName

	updated, err := svc.Update(context.Background(), ports.UpdateLetterInput{
		ID:          created.ID,
		Direction:   domain.DirectionIncoming,
		Number:      "001-A/SM/2026",
		Counterpart: "Dinas Pemuda",
		Date:        time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		Subject:     "Revisi undangan",
		File:        &ports.FileUpload{Name: "revisi.pdf", Content: strings.NewReader("%PDF-1.4")},
		Actor:       ports.Identity{UserID: "admin1", Role: domain.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Number != "001-A/SM/2026" {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if updated.FileName == oldName {
		t.Fatalf("expected replaced stored file name")
	}
	if len(files.removed) != 1 || files.removed[0] != oldName {
		t.Fatalf("old file should be removed, got %v", files.removed)
	}
}

func TestLetterUpdate_WithoutFileKeepsDocument(t *testing.T) {
	repo := newStubLetterRepo()
	files := &memFileStore{}
	svc := NewLetterService(repo, files, zerolog.Nop())
	created := seedLetter(t, repo, "001/SM/2026", "admin1")

	updated, err := svc.Update(context.Background(), ports.UpdateLetterInput{
		ID:          created.ID,
		Direction:   domain.DirectionIncoming,
		Number:      created.Number,
		Counterpart: created.Counterpart,
		Date:        created.Date,
		Subject:     "Perihal diperbarui",
		Actor:       ports.Identity{UserID: "admin1", Role: domain.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.FileName != created.FileName {
		t.Fatalf("document must survive a metadata-only update")
	}
	if len(files.removed) != 0 {
		t.Fatalf("no file should be removed, got %v", files.removed)
	}
}

func TestLetterDelete_RemovesRecordAndFile(t *testing.T) {
	repo := newStubLetterRepo()
	files := &memFileStore{}
	svc := NewLetterService(repo, files, zerolog.Nop())
	created := seedLetter(t, repo, "001/SM/2026", "admin1")

	if err := svc.Delete(context.Background(), ports.Identity{UserID: "admin1", Role: domain.RoleAdmin}, domain.DirectionIncoming, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(files.removed) != 1 {
		t.Fatalf("stored file should be removed, got %v", files.removed)
	}
	if _, err := repo.FindByID(context.Background(), domain.DirectionIncoming, created.ID); !errors.Is(err, domain.ErrLetterNotFound) {
		t.Fatalf("record should be gone, got %v", err)
	}
}

func TestLetterDownload_MemberForbidden(t *testing.T) {
	repo := newStubLetterRepo()
	svc := NewLetterService(repo, &memFileStore{}, zerolog.Nop())
	created := seedLetter(t, repo, "001/SM/2026", "u2")

	_, _, err := svc.Download(context.Background(), ports.Identity{UserID: "u2", Role: domain.RoleMember}, domain.DirectionIncoming, created.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member download, got %v", err)
	}

	path, name, err := svc.Download(context.Background(), ports.Identity{UserID: "admin1", Role: domain.RoleAdmin}, domain.DirectionIncoming, created.ID)
	if err != nil {
		t.Fatalf("admin download failed: %v", err)
	}
	if path == "" || name != created.FileName {
		t.Fatalf("unexpected download result: %q %q", path, name)
	}
}

func seedLetter(t *testing.T, repo *stubLetterRepo, number, owner string) *domain.Letter {
	t.Helper()
	created, err := repo.Create(context.Background(), &domain.Letter{
		Direction:   domain.DirectionIncoming,
		Number:      number,
		Counterpart: "Dinas Pemuda",
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Subject:     "Undangan",
		FileName:    "stored_" + number + ".pdf",
		UploadedBy:  owner,
	})
	if err != nil {
		t.Fatalf("seed letter: %v", err)
	}
	return created
}
