package handler

import "github.com/mapascal/records-system/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	// Role selects the login path: admins authenticate with username or NIA,
	// members with NIA followed by their one-time access code.
	Role       string `json:"role"       validate:"required,oneof=admin anggota"`
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type verifyTokenRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Code   string `json:"code"    validate:"required"`
}

type registerRequest struct {
	Username        string `json:"username"         validate:"required,min=4,max=50"`
	Password        string `json:"password"         validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FullName        string `json:"full_name"        validate:"required,min=3,max=100"`
	FieldName       string `json:"field_name"       validate:"required,min=3,max=100"`
	NIA             string `json:"nia"              validate:"required,min=4,max=50"`
	MembershipLevel string `json:"membership_level" validate:"required,oneof='Anggota Muda' 'Anggota Penuh' 'Anggota Kehormatan'"`
}

type userResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	NIA             string `json:"nia"`
	FullName        string `json:"full_name"`
	FieldName       string `json:"field_name,omitempty"`
	MembershipLevel string `json:"membership_level,omitempty"`
	Role            string `json:"role"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:              u.ID,
		Username:        u.Username,
		NIA:             u.NIA,
		FullName:        u.FullName,
		FieldName:       u.FieldName,
		MembershipLevel: u.MembershipLevel,
		Role:            string(u.Role),
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// loginResponse covers both login outcomes: a full session, or the
// second-factor handoff carrying only the pending user id.
type loginResponse struct {
	Status string        `json:"status"`
	Token  string        `json:"token,omitempty"`
	User   *userResponse `json:"user,omitempty"`
	UserID string        `json:"user_id,omitempty"`
}

type registerResponse struct {
	Message string        `json:"message"`
	User    *userResponse `json:"user"`
}
