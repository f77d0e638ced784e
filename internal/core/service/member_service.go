package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mapascal/records-system/internal/api/metrics"
	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

// MemberService covers member self-registration and the admin-side member
// lifecycle: approval, access-code reissue, and listings.
type MemberService struct {
	users ports.UserRepository
	auth  ports.AuthService
	log   zerolog.Logger
}

func NewMemberService(users ports.UserRepository, auth ports.AuthService, log zerolog.Logger) *MemberService {
	return &MemberService{users: users, auth: auth, log: log}
}

// Register creates an inactive member account. Activation happens only via
// admin approval.
func (s *MemberService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:        input.Username,
		NIA:             input.NIA,
		FullName:        input.FullName,
		FieldName:       input.FieldName,
		MembershipLevel: input.MembershipLevel,
		Role:            domain.RoleMember,
		IsActive:        false,
		PasswordHash:    string(hash),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("nia", created.NIA).Msg("new member pending approval")
	metrics.RegistrationsTotal.Inc()
	return created, nil
}

func (s *MemberService) Members(ctx context.Context) ([]domain.User, error) {
	return s.users.ListMembers(ctx)
}

func (s *MemberService) PendingRegistrations(ctx context.Context) ([]domain.User, error) {
	return s.users.ListPendingMembers(ctx)
}

// Approve activates a pending member and issues their first access code.
func (s *MemberService) Approve(ctx context.Context, userID string) (string, *domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if user.IsActive {
		return "", user, domain.ErrAlreadyActive
	}

	user.IsActive = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return "", nil, fmt.Errorf("activate member: %w", err)
	}

	code, err := s.auth.IssueToken(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("username", user.Username).Str("nia", user.NIA).Msg("member approved")
	return code, user, nil
}

// ReissueToken replaces the access code of an existing member. The previous
// code stops verifying the moment the new hash is stored.
func (s *MemberService) ReissueToken(ctx context.Context, userID string) (string, *domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	code, err := s.auth.IssueToken(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("username", user.Username).Str("nia", user.NIA).Msg("access code reissued")
	return code, user, nil
}
