package domain

import (
	"errors"
	"time"
)

// Role is the closed set of actor roles. "anggota" is the regular member
// role; admins bypass ownership checks everywhere.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "anggota"
)

// ParseRole maps a raw role selection to a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMember:
		return RoleMember, true
	}
	return "", false
}

// Authentication rejections are not errors: they travel as AuthResult
// reasons so the credential flow can distinguish outcomes without error
// wrapping. The sentinels below cover the genuinely exceptional cases.
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrAlreadyActive = errors.New("account already active")
var ErrForbidden = errors.New("access forbidden")

// User models a registered person: an admin or an organization member.
// Members authenticate with their NIA (member identification number) plus a
// one-time access code; admins authenticate with username or NIA directly.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	NIA             string    `json:"nia"`
	FullName        string    `json:"full_name"`
	FieldName       string    `json:"field_name,omitempty"`
	MembershipLevel string    `json:"membership_level,omitempty"`
	Role            Role      `json:"role"`
	IsActive        bool      `json:"is_active"`
	PasswordHash    string    `json:"-"`

	// One-time access code state. The hash is empty when no code is
	// outstanding; an expired code is lazily cleared on first read.
	AccessTokenHash       string     `json:"-"`
	AccessTokenExpiration *time.Time `json:"-"`
	AccessTokenUsed       bool       `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAccessToken reports whether an access code is currently stored,
// regardless of its used/expired state.
func (u *User) HasAccessToken() bool {
	return u.AccessTokenHash != ""
}

// ClearAccessToken removes the stored access code state entirely.
func (u *User) ClearAccessToken() {
	u.AccessTokenHash = ""
	u.AccessTokenExpiration = nil
	u.AccessTokenUsed = false
}

// AccessTokenExpired reports whether the stored code's expiry is in the past.
func (u *User) AccessTokenExpired(now time.Time) bool {
	return u.AccessTokenExpiration != nil && now.After(*u.AccessTokenExpiration)
}
