package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mapascal/records-system/internal/api/metrics"
	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

// bruteForceThreshold is the failed-attempt count at which the log severity
// escalates for a (role, identifier) key. No lockout follows; rate limiting
// belongs to the edge.
const bruteForceThreshold = 3

// AuthService implements the authentication engine: primary credential
// verification, the one-time access-code second factor for members, and
// access-code issuance.
type AuthService struct {
	users      ports.UserRepository
	pending    ports.PendingLoginStore
	attempts   *AttemptTracker
	jwtSecret  string
	sessionTTL time.Duration
	codeTTL    time.Duration
	dummyHash  []byte
	log        zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	pending ports.PendingLoginStore,
	jwtSecret string,
	sessionTTL, codeTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if codeTTL <= 0 {
		codeTTL = 5 * time.Minute
	}
	// Unknown identifiers still pay one bcrypt comparison against this hash,
	// so the rejection timing does not reveal whether the account exists.
	dummy, err := bcrypt.GenerateFromPassword([]byte("mapascal.dummy.credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: dummy hash: %v", err))
	}
	return &AuthService{
		users:      users,
		pending:    pending,
		attempts:   NewAttemptTracker(),
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		codeTTL:    codeTTL,
		dummyHash:  dummy,
		log:        log,
	}
}

// Authenticate checks primary credentials for the selected role. Admins get a
// session directly; active members transition to the pending-second-factor
// state instead. Unknown identifier and wrong password share one rejection.
func (s *AuthService) Authenticate(ctx context.Context, roleSelection, identifier, password string) (*ports.AuthResult, error) {
	role, ok := domain.ParseRole(roleSelection)
	if !ok {
		metrics.LoginAttemptsTotal.WithLabelValues(roleSelection, "invalid_role").Inc()
		return rejected(ports.ReasonInvalidRole), nil
	}

	var user *domain.User
	var err error
	switch role {
	case domain.RoleAdmin:
		user, err = s.users.FindAdminByIdentifier(ctx, identifier)
	case domain.RoleMember:
		user, err = s.users.FindMemberByNIA(ctx, identifier)
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.verifyPassword(user, password) {
		s.recordFailure(role, identifier)
		metrics.LoginAttemptsTotal.WithLabelValues(string(role), "failure").Inc()
		return rejected(ports.ReasonBadCredentials), nil
	}

	// Credentials verified; the failed-attempt counter resets here, before
	// the activation gate.
	s.attempts.Reset(role, identifier)

	if role == domain.RoleAdmin {
		if !user.IsActive {
			// First successful admin login implicitly activates the account.
			user.IsActive = true
			user.UpdatedAt = time.Now().UTC()
			if err := s.users.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("activate admin: %w", err)
			}
		}
		token, err := s.sessionToken(user)
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("username", user.Username).Msg("admin logged in")
		metrics.LoginAttemptsTotal.WithLabelValues(string(role), "success").Inc()
		return &ports.AuthResult{Status: ports.AuthAuthenticated, Token: token, User: user}, nil
	}

	if !user.IsActive {
		s.log.Warn().Str("nia", identifier).Msg("login rejected: account awaiting approval")
		metrics.LoginAttemptsTotal.WithLabelValues(string(role), "inactive").Inc()
		return rejected(ports.ReasonInactiveAccount), nil
	}

	if err := s.pending.Put(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("pending login: %w", err)
	}
	s.log.Info().Str("nia", user.NIA).Msg("primary credentials accepted, awaiting access code")
	metrics.LoginAttemptsTotal.WithLabelValues(string(role), "second_factor").Inc()
	return &ports.AuthResult{Status: ports.AuthSecondFactorRequired, PendingUserID: user.ID}, nil
}

// VerifySecondFactor checks a submitted access code against the pending
// login recorded by Authenticate. Preconditions short-circuit in order:
// pending marker, code present and unused, unexpired, then the hash match.
func (s *AuthService) VerifySecondFactor(ctx context.Context, userID, code string) (*ports.AuthResult, error) {
	pendingOK, err := s.pending.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("pending login: %w", err)
	}
	if !pendingOK {
		metrics.SecondFactorTotal.WithLabelValues("no_pending").Inc()
		return rejected(ports.ReasonNoPendingLogin), nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.pending.Delete(ctx, userID)
			metrics.SecondFactorTotal.WithLabelValues("no_pending").Inc()
			return rejected(ports.ReasonNoPendingLogin), nil
		}
		return nil, fmt.Errorf("verify second factor: %w", err)
	}

	if !user.HasAccessToken() || user.AccessTokenUsed {
		s.log.Warn().Str("nia", user.NIA).Msg("access code rejected: not set or already used")
		metrics.SecondFactorTotal.WithLabelValues("invalid").Inc()
		return rejected(ports.ReasonTokenInvalid), nil
	}

	now := time.Now().UTC()
	if user.AccessTokenExpired(now) {
		// Lazy invalidation: clear the stale code the moment it is observed.
		user.ClearAccessToken()
		user.UpdatedAt = now
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("clear expired code: %w", err)
		}
		s.log.Warn().Str("nia", user.NIA).Msg("access code rejected: expired")
		metrics.SecondFactorTotal.WithLabelValues("expired").Inc()
		return rejected(ports.ReasonTokenExpired), nil
	}

	if bcrypt.CompareHashAndPassword([]byte(user.AccessTokenHash), []byte(code)) != nil {
		s.log.Warn().Str("nia", user.NIA).Msg("access code rejected: wrong code")
		metrics.SecondFactorTotal.WithLabelValues("wrong_code").Inc()
		return rejected(ports.ReasonWrongCode), nil
	}

	// Single use: the code is burned before the session is established.
	user.AccessTokenUsed = true
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("mark code used: %w", err)
	}
	if err := s.pending.Delete(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to clear pending login marker")
	}

	token, err := s.sessionToken(user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("nia", user.NIA).Msg("member logged in via access code")
	metrics.SecondFactorTotal.WithLabelValues("success").Inc()
	return &ports.AuthResult{Status: ports.AuthAuthenticated, Token: token, User: user}, nil
}

// IssueToken generates a fresh one-time access code for the user, replacing
// any outstanding code. The plaintext is returned once and never stored.
func (s *AuthService) IssueToken(ctx context.Context, userID string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	code, err := generateAccessCode()
	if err != nil {
		return "", fmt.Errorf("generate access code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash access code: %w", err)
	}

	now := time.Now().UTC()
	exp := now.Add(s.codeTTL)
	user.AccessTokenHash = string(hash)
	user.AccessTokenExpiration = &exp
	user.AccessTokenUsed = false
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("store access code: %w", err)
	}

	s.log.Info().Str("nia", user.NIA).Time("expires_at", exp).Msg("access code issued")
	metrics.AccessCodesIssuedTotal.Inc()
	return code, nil
}

// verifyPassword runs exactly one bcrypt comparison whether or not a user was
// found. A nil user can never verify.
func (s *AuthService) verifyPassword(user *domain.User, password string) bool {
	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	ok := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	return ok && user != nil
}

func (s *AuthService) recordFailure(role domain.Role, identifier string) {
	n := s.attempts.Record(role, identifier)
	if n >= bruteForceThreshold {
		metrics.BruteForceSignalsTotal.WithLabelValues(string(role)).Inc()
		s.log.Error().
			Str("role", string(role)).
			Str("identifier", identifier).
			Int("failed_attempts", n).
			Msg("possible brute-force attempt")
		return
	}
	s.log.Warn().
		Str("role", string(role)).
		Str("identifier", identifier).
		Msg("login failed")
}

func (s *AuthService) sessionToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"nia":      user.NIA,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.sessionTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func rejected(reason ports.RejectReason) *ports.AuthResult {
	return &ports.AuthResult{Status: ports.AuthRejected, Reason: reason}
}

// generateAccessCode returns a 12-character hex code from 6 random bytes.
func generateAccessCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
