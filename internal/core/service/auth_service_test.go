package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.AccessTokenExpiration != nil {
		exp := *u.AccessTokenExpiration
		clone.AccessTokenExpiration = &exp
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.NIA == user.NIA {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		r.nextID++
		copy.ID = "u" + string(rune('0'+r.nextID))
	}
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindAdminByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Role == domain.RoleAdmin && (u.Username == identifier || u.NIA == identifier) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindMemberByNIA(_ context.Context, nia string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Role == domain.RoleMember && u.NIA == nia {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) ListMembers(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleMember {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListPendingMembers(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleMember && !u.IsActive {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

type memPendingStore struct {
	marks map[string]bool
}

func newMemPendingStore() *memPendingStore {
	return &memPendingStore{marks: make(map[string]bool)}
}

func (s *memPendingStore) Put(_ context.Context, userID string) error {
	s.marks[userID] = true
	return nil
}

func (s *memPendingStore) Exists(_ context.Context, userID string) (bool, error) {
	return s.marks[userID], nil
}

func (s *memPendingStore) Delete(_ context.Context, userID string) error {
	delete(s.marks, userID)
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func seedUser(t *testing.T, repo *stubUserRepo, u domain.User, password string) *domain.User {
	t.Helper()
	u.PasswordHash = mustHash(t, password)
	created, err := repo.Create(context.Background(), &u)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return created
}

func newTestAuthService(repo *stubUserRepo, pending *memPendingStore) *AuthService {
	return NewAuthService(repo, pending, "secret", time.Hour, 5*time.Minute, zerolog.Nop())
}

func TestAuthenticate_InvalidRole(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newMemPendingStore())

	res, err := svc.Authenticate(context.Background(), "superuser", "someone", "pw")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonInvalidRole {
		t.Fatalf("expected invalid_role rejection, got %+v", res)
	}
}

func TestAuthenticate_AdminSuccess(t *testing.T) {
	repo := newStubUserRepo()
	pending := newMemPendingStore()
	svc := newTestAuthService(repo, pending)
	seedUser(t, repo, domain.User{
		Username: "sekretariat",
		NIA:      "ADM-001",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}, "s3cret")

	res, err := svc.Authenticate(context.Background(), "admin", "sekretariat", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthAuthenticated {
		t.Fatalf("expected authenticated, got %+v", res)
	}
	if res.Token == "" {
		t.Fatalf("expected session token")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != "admin" {
		t.Fatalf("expected role admin in claims, got %v", claims["role"])
	}
	if len(pending.marks) != 0 {
		t.Fatalf("admin login must not create a pending marker")
	}
}

func TestAuthenticate_AdminByNIA(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newMemPendingStore())
	seedUser(t, repo, domain.User{
		Username: "sekretariat",
		NIA:      "ADM-001",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}, "s3cret")

	res, err := svc.Authenticate(context.Background(), "admin", "ADM-001", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthAuthenticated {
		t.Fatalf("expected authenticated via NIA, got %+v", res)
	}
}

func TestAuthenticate_AdminFirstLoginActivates(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newMemPendingStore())
	admin := seedUser(t, repo, domain.User{
		Username: "sekretariat",
		NIA:      "ADM-001",
		Role:     domain.RoleAdmin,
		IsActive: false,
	}, "s3cret")

	res, err := svc.Authenticate(context.Background(), "admin", "sekretariat", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthAuthenticated {
		t.Fatalf("expected authenticated, got %+v", res)
	}

	stored, _ := repo.FindByID(context.Background(), admin.ID)
	if !stored.IsActive {
		t.Fatalf("first admin login should have activated the account")
	}
}

func TestAuthenticate_UnknownIdentifier(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newMemPendingStore())

	res, err := svc.Authenticate(context.Background(), "anggota", "GHOST-404", "pw")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonBadCredentials {
		t.Fatalf("expected bad_credentials, got %+v", res)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newMemPendingStore())
	seedUser(t, repo, domain.User{
		Username: "budi",
		NIA:      "MPC-010",
		Role:     domain.RoleMember,
		IsActive: true,
	}, "goodpass")

	res, err := svc.Authenticate(context.Background(), "anggota", "MPC-010", "badpass")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonBadCredentials {
		t.Fatalf("expected bad_credentials, got %+v", res)
	}
}

func TestAuthenticate_BruteForceSignalOnThirdFailure(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, domain.User{
		Username: "sekretariat",
		NIA:      "ADM-001",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}, "s3cret")

	var buf bytes.Buffer
	svc := NewAuthService(repo, newMemPendingStore(), "secret", time.Hour, 5*time.Minute, zerolog.New(&buf))

	fail := func() {
		t.Helper()
		res, err := svc.Authenticate(context.Background(), "admin", "sekretariat", "wrongpass")
		if err != nil {
			t.Fatalf("Authenticate returned error: %v", err)
		}
		if res.Status != ports.AuthRejected || res.Reason != ports.ReasonBadCredentials {
			t.Fatalf("expected bad_credentials rejection, got %+v", res)
		}
	}

	fail()
	fail()
	if strings.Contains(buf.String(), "possible brute-force attempt") {
		t.Fatalf("signal must not fire before the third consecutive failure")
	}

	fail()
	if !strings.Contains(buf.String(), "possible brute-force attempt") {
		t.Fatalf("third consecutive failure should emit the brute-force signal")
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("brute-force signal should be logged at error level")
	}

	// A successful login resets the counter, so the next failure is an
	// ordinary warning again.
	buf.Reset()
	res, err := svc.Authenticate(context.Background(), "admin", "sekretariat", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthAuthenticated {
		t.Fatalf("expected authenticated, got %+v", res)
	}
	fail()
	if strings.Contains(buf.String(), "possible brute-force attempt") {
		t.Fatalf("counter should reset after a successful login")
	}
}

func TestAuthenticate_InactiveMemberRejectedAfterCredentialCheck(t *testing.T) {
	repo := newStubUserRepo()
	pending := newMemPendingStore()
	svc := newTestAuthService(repo, pending)
	seedUser(t, repo, domain.User{
		Username: "budi",
		NIA:      "MPC-010",
		Role:     domain.RoleMember,
		IsActive: false,
	}, "goodpass")

	// Wrong password on an inactive account still reads as bad credentials,
	// never leaking the activation state.
	res, err := svc.Authenticate(context.Background(), "anggota", "MPC-010", "badpass")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Reason != ports.ReasonBadCredentials {
		t.Fatalf("expected bad_credentials for wrong password, got %+v", res)
	}

	res, err = svc.Authenticate(context.Background(), "anggota", "MPC-010", "goodpass")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonInactiveAccount {
		t.Fatalf("expected inactive_account, got %+v", res)
	}
	if len(pending.marks) != 0 {
		t.Fatalf("inactive member must not reach the pending state")
	}
}

func TestAuthenticate_ActiveMemberGoesPending(t *testing.T) {
	repo := newStubUserRepo()
	pending := newMemPendingStore()
	svc := newTestAuthService(repo, pending)
	member := seedUser(t, repo, domain.User{
		Username: "budi",
		NIA:      "MPC-010",
		Role:     domain.RoleMember,
		IsActive: true,
	}, "goodpass")

	res, err := svc.Authenticate(context.Background(), "anggota", "MPC-010", "goodpass")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Status != ports.AuthSecondFactorRequired {
		t.Fatalf("expected second_factor_required, got %+v", res)
	}
	if res.PendingUserID != member.ID {
		t.Fatalf("expected pending user id %q, got %q", member.ID, res.PendingUserID)
	}
	if res.Token != "" {
		t.Fatalf("no session token may be issued before the second factor")
	}
	if !pending.marks[member.ID] {
		t.Fatalf("pending marker not recorded")
	}
}

func TestVerifySecondFactor_FullFlow(t *testing.T) {
	repo := newStubUserRepo()
	pending := newMemPendingStore()
	svc := newTestAuthService(repo, pending)
	member := seedUser(t, repo, domain.User{
		Username: "budi",
		NIA:      "MPC-010",
		Role:     domain.RoleMember,
		IsActive: true,
	}, "goodpass")

	code, err := svc.IssueToken(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	if len(code) != 12 {
		t.Fatalf("expected 12-character access code, got %q", code)
	}

	if _, err := svc.Authenticate(context.Background(), "anggota", "MPC-010", "goodpass"); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	res, err := svc.VerifySecondFactor(context.Background(), member.ID, code)
	if err != nil {
		t.Fatalf("VerifySecondFactor returned error: %v", err)
	}
	if res.Status != ports.AuthAuthenticated {
		t.Fatalf("expected authenticated, got %+v", res)
	}
	if res.Token == "" {
		t.Fatalf("expected session token")
	}
	if pending.marks[member.ID] {
		t.Fatalf("pending marker should be cleared after verification")
	}

	stored, _ := repo.FindByID(context.Background(), member.ID)
	if !stored.AccessTokenUsed {
		t.Fatalf("access code should be marked used")
	}
}

func TestVerifySecondFactor_NoPendingLogin(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newMemPendingStore())

	res, err := svc.VerifySecondFactor(context.Background(), "unknown", "abc123def456")
	if err != nil {
		t.Fatalf("VerifySecondFactor returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonNoPendingLogin {
		t.Fatalf("expected no_pending_login, got %+v", res)
	}
}

func TestVerifySecondFactor_UsedCodeRejected(t *testing.T) {
	repo := newStubUserRepo()
	pending := newMemPendingStore()
	svc := newTestAuthService(repo, pending)
	member := seedUser(t, repo, domain.User{
		Username: "budi",
		NIA:      "MPC-010",
		Role:     domain.RoleMember,
		IsActive: true,
	}, "goodpass")

	code, err := svc.IssueToken(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	_, _ = svc.Authenticate(context.Background(), "anggota", "MPC-010", "goodpass")
	if res, _ := svc.VerifySecondFactor(context.Background(), member.ID, code); res.Status != ports.AuthAuthenticated {
		t.Fatalf("first verification should succeed, got %+v", res)
	}

	// Log in again: credentials still pass, but the burned code must not.
	_, _ = svc.Authenticate(context.Background(), "anggota", "MPC-010", "goodpass")
	res, err := svc.VerifySecondFactor(context.Background(), member.ID, code)
	if err != nil {
		t.Fatalf("VerifySecondFactor returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonTokenInvalid {
		t.Fatalf("expected token_invalid for reused code, got %+v", res)
	}
}

func TestVerifySecondFactor_WrongCode(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newMemPendingStore())
	member := seedUser(t, repo, domain.User{
		Username: "budi",
		NIA:      "MPC-010",
		Role:     domain.RoleMember,
		IsActive: true,
	}, "goodpass")

	if _, err := svc.IssueToken(context.Background(), member.ID); err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	_, _ = svc.Authenticate(context.Background(), "anggota", "MPC-010", "goodpass")

	res, err := svc.VerifySecondFactor(context.Background(), member.ID, "000000000000")
	if err != nil {
		t.Fatalf("VerifySecondFactor returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonWrongCode {
		t.Fatalf("expected wrong_code, got %+v", res)
	}
}

func TestVerifySecondFactor_ExpiredCodeCleared(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newMemPendingStore())
	member := seedUser(t, repo, domain.User{
		Username: "budi",
		NIA:      "MPC-010",
		Role:     domain.RoleMember,
		IsActive: true,
	}, "goodpass")

	code, err := svc.IssueToken(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	// Backdate the expiry so the code is stale by the time it is checked.
	stored, _ := repo.FindByID(context.Background(), member.ID)
	past := time.Now().UTC().Add(-time.Minute)
	stored.AccessTokenExpiration = &past
	if err := repo.Update(context.Background(), stored); err != nil {
		t.Fatalf("backdate expiry: %v", err)
	}

	_, _ = svc.Authenticate(context.Background(), "anggota", "MPC-010", "goodpass")
	res, err := svc.VerifySecondFactor(context.Background(), member.ID, code)
	if err != nil {
		t.Fatalf("VerifySecondFactor returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonTokenExpired {
		t.Fatalf("expected token_expired, got %+v", res)
	}

	stored, _ = repo.FindByID(context.Background(), member.ID)
	if stored.HasAccessToken() {
		t.Fatalf("expired code should be cleared on first observation")
	}
}

func TestIssueToken_ReplacesOutstandingCode(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, newMemPendingStore())
	member := seedUser(t, repo, domain.User{
		Username: "budi",
		NIA:      "MPC-010",
		Role:     domain.RoleMember,
		IsActive: true,
	}, "goodpass")

	oldCode, err := svc.IssueToken(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	newCode, err := svc.IssueToken(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	if oldCode == newCode {
		t.Fatalf("reissue must produce a fresh code")
	}

	_, _ = svc.Authenticate(context.Background(), "anggota", "MPC-010", "goodpass")
	res, err := svc.VerifySecondFactor(context.Background(), member.ID, oldCode)
	if err != nil {
		t.Fatalf("VerifySecondFactor returned error: %v", err)
	}
	if res.Status != ports.AuthRejected || res.Reason != ports.ReasonWrongCode {
		t.Fatalf("superseded code should no longer verify, got %+v", res)
	}

	res, err = svc.VerifySecondFactor(context.Background(), member.ID, newCode)
	if err != nil {
		t.Fatalf("VerifySecondFactor returned error: %v", err)
	}
	if res.Status != ports.AuthAuthenticated {
		t.Fatalf("fresh code should verify, got %+v", res)
	}
}
