package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mapascal/records-system/internal/api/metrics"
	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

// Whitelists for the letter listing. Anything outside falls back to the
// default rather than erroring, matching the forgiving query contract.
var (
	allowedSearchBy  = map[string]struct{}{"number": {}, "counterpart": {}, "subject": {}}
	allowedSortBy    = map[string]struct{}{"number": {}, "counterpart": {}, "date": {}, "subject": {}}
	allowedSortOrder = map[string]struct{}{"asc": {}, "desc": {}}
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// LetterService implements correspondence record use cases. Authorization is
// an explicit call at the top of each operation: registering, editing,
// deleting and downloading letters require the admin role plus ownership of
// the record; listing and viewing are scoped to the member's own records.
type LetterService struct {
	repo  ports.LetterRepository
	files ports.FileStore
	log   zerolog.Logger
}

func NewLetterService(repo ports.LetterRepository, files ports.FileStore, log zerolog.Logger) *LetterService {
	return &LetterService{repo: repo, files: files, log: log}
}

func (s *LetterService) Create(ctx context.Context, input ports.CreateLetterInput) (*domain.Letter, error) {
	if err := decisionError(RequireRole(input.Actor.Role, domain.RoleAdmin)); err != nil {
		return nil, err
	}

	stored, err := s.files.Save(input.Direction, input.File.Name, input.File.Content)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	letter := &domain.Letter{
		Direction:   input.Direction,
		Number:      input.Number,
		Counterpart: input.Counterpart,
		Date:        input.Date,
		Subject:     input.Subject,
		FileName:    stored,
		UploadedBy:  input.Actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, letter)
	if err != nil {
		if rmErr := s.files.Remove(input.Direction, stored); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("file", stored).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}

	s.log.Info().
		Str("direction", string(input.Direction)).
		Str("number", created.Number).
		Str("uploaded_by", input.Actor.UserID).
		Msg("letter registered")
	metrics.LettersCreatedTotal.WithLabelValues(string(input.Direction)).Inc()
	return created, nil
}

func (s *LetterService) Get(ctx context.Context, actor ports.Identity, direction domain.Direction, id string) (*domain.Letter, error) {
	return s.resolveOwned(ctx, actor, direction, id)
}

func (s *LetterService) List(ctx context.Context, input ports.ListLettersInput) (*ports.ListLettersResult, error) {
	filter := ports.LetterFilter{
		Direction: input.Direction,
		Search:    input.Search,
		SearchBy:  input.SearchBy,
		DateFrom:  input.DateFrom,
		DateTo:    input.DateTo,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Page:      input.Page,
		Limit:     input.Limit,
	}

	// Members only ever see their own records; admins see everything.
	if input.Actor.Role != domain.RoleAdmin {
		filter.OwnerID = input.Actor.UserID
	}

	if _, ok := allowedSearchBy[filter.SearchBy]; !ok {
		filter.SearchBy = "number"
	}
	if _, ok := allowedSortBy[filter.SortBy]; !ok {
		filter.SortBy = "date"
	}
	if _, ok := allowedSortOrder[filter.SortOrder]; !ok {
		filter.SortOrder = "desc"
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list letters: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListLettersResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *LetterService) Update(ctx context.Context, input ports.UpdateLetterInput) (*domain.Letter, error) {
	if err := decisionError(RequireRole(input.Actor.Role, domain.RoleAdmin)); err != nil {
		return nil, err
	}
	letter, err := s.resolveOwned(ctx, input.Actor, input.Direction, input.ID)
	if err != nil {
		return nil, err
	}

	if input.File != nil {
		stored, err := s.files.Save(input.Direction, input.File.Name, input.File.Content)
		if err != nil {
			return nil, err
		}
		if letter.FileName != "" {
			if rmErr := s.files.Remove(input.Direction, letter.FileName); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("file", letter.FileName).Msg("failed to remove replaced upload")
			}
		}
		letter.FileName = stored
	}

	letter.Number = input.Number
	letter.Counterpart = input.Counterpart
	letter.Date = input.Date
	letter.Subject = input.Subject
	letter.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, letter); err != nil {
		return nil, err
	}

	s.log.Info().Str("number", letter.Number).Str("id", letter.ID).Msg("letter updated")
	return letter, nil
}

func (s *LetterService) Delete(ctx context.Context, actor ports.Identity, direction domain.Direction, id string) error {
	if err := decisionError(RequireRole(actor.Role, domain.RoleAdmin)); err != nil {
		return err
	}
	letter, err := s.resolveOwned(ctx, actor, direction, id)
	if err != nil {
		return err
	}

	if letter.FileName != "" {
		if rmErr := s.files.Remove(direction, letter.FileName); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("file", letter.FileName).Msg("failed to remove stored upload")
		}
	}
	if err := s.repo.Delete(ctx, direction, id); err != nil {
		return err
	}

	s.log.Info().Str("number", letter.Number).Str("id", id).Msg("letter deleted")
	return nil
}

func (s *LetterService) Download(ctx context.Context, actor ports.Identity, direction domain.Direction, id string) (string, string, error) {
	if err := decisionError(RequireRole(actor.Role, domain.RoleAdmin)); err != nil {
		return "", "", err
	}
	letter, err := s.resolveOwned(ctx, actor, direction, id)
	if err != nil {
		return "", "", err
	}
	return s.files.Path(direction, letter.FileName), letter.FileName, nil
}

// resolveOwned loads a letter and runs the ownership check: missing ID is a
// bad request, a vanished record is not found, and a non-owner non-admin is
// forbidden.
func (s *LetterService) resolveOwned(ctx context.Context, actor ports.Identity, direction domain.Direction, id string) (*domain.Letter, error) {
	if id == "" {
		return nil, decisionError(ports.DecisionBadRequest)
	}
	letter, err := s.repo.FindByID(ctx, direction, id)
	if err != nil {
		return nil, err
	}
	if err := decisionError(RequireOwnership(actor, letter.UploadedBy)); err != nil {
		return nil, err
	}
	return letter, nil
}
