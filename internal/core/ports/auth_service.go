package ports

import (
	"context"

	"github.com/mapascal/records-system/internal/core/domain"
)

// AuthStatus is the outcome class of an authentication step.
type AuthStatus string

const (
	// AuthAuthenticated means a session token was issued.
	AuthAuthenticated AuthStatus = "authenticated"
	// AuthSecondFactorRequired means primary credentials were accepted and
	// the caller must now submit the one-time access code. No session exists
	// yet.
	AuthSecondFactorRequired AuthStatus = "second_factor_required"
	// AuthRejected means the attempt failed; Reason carries the bucket.
	AuthRejected AuthStatus = "rejected"
)

// RejectReason buckets a rejected authentication attempt. Reasons that could
// leak account existence are deliberately collapsed into ReasonBadCredentials.
type RejectReason string

const (
	ReasonBadCredentials  RejectReason = "bad_credentials"
	ReasonInactiveAccount RejectReason = "inactive_account"
	ReasonInvalidRole     RejectReason = "invalid_role"
	ReasonNoPendingLogin  RejectReason = "no_pending_login"
	ReasonTokenInvalid    RejectReason = "token_invalid"
	ReasonTokenExpired    RejectReason = "token_expired"
	ReasonWrongCode       RejectReason = "wrong_code"
)

// AuthResult is the single result type for both authentication steps.
type AuthResult struct {
	Status AuthStatus
	// Reason is set only when Status == AuthRejected.
	Reason RejectReason
	// Token is the session JWT, set only when Status == AuthAuthenticated.
	Token string
	// User is set when Status == AuthAuthenticated.
	User *domain.User
	// PendingUserID identifies the account awaiting its second factor, set
	// only when Status == AuthSecondFactorRequired.
	PendingUserID string
}

// AuthService is the authentication engine: primary credential check,
// one-time access-code verification, and access-code issuance.
type AuthService interface {
	Authenticate(ctx context.Context, roleSelection, identifier, password string) (*AuthResult, error)
	VerifySecondFactor(ctx context.Context, userID, code string) (*AuthResult, error)
	// IssueToken generates a fresh one-time access code for the user,
	// replacing any outstanding one, and returns the plaintext exactly once.
	IssueToken(ctx context.Context, userID string) (string, error)
}
