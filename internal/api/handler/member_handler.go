package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

// MemberHandler serves the member directory and the admin-side member
// lifecycle (approval, access-code reissue).
type MemberHandler struct {
	members ports.MemberService
}

func NewMemberHandler(members ports.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

type memberListResponse struct {
	Data []userResponse `json:"data"`
}

// accessCodeResponse carries the plaintext access code exactly once, for
// out-of-band delivery to the member.
type accessCodeResponse struct {
	AccessCode string        `json:"access_code"`
	User       *userResponse `json:"user"`
}

// List returns all member accounts ordered by full name.
//
// @Summary      List members
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  memberListResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/members [get]
func (h *MemberHandler) List(c echo.Context) error {
	users, err := h.members.Members(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMemberList(users))
}

// Pending returns registrations awaiting approval, newest first.
//
// @Summary      List pending registrations
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  memberListResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/members/pending [get]
func (h *MemberHandler) Pending(c echo.Context) error {
	users, err := h.members.PendingRegistrations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMemberList(users))
}

// Approve activates a pending member and returns their first access code.
//
// @Summary      Approve a pending member
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Member id"
// @Success      200  {object}  accessCodeResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/members/{id}/approve [post]
func (h *MemberHandler) Approve(c echo.Context) error {
	code, user, err := h.members.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accessCodeResponse{
		AccessCode: code,
		User:       toUserResponse(user),
	})
}

// ReissueCode replaces a member's one-time access code.
//
// @Summary      Reissue a member's access code
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Member id"
// @Success      200  {object}  accessCodeResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/members/{id}/access-code [post]
func (h *MemberHandler) ReissueCode(c echo.Context) error {
	code, user, err := h.members.ReissueToken(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accessCodeResponse{
		AccessCode: code,
		User:       toUserResponse(user),
	})
}

func toMemberList(users []domain.User) memberListResponse {
	data := make([]userResponse, 0, len(users))
	for i := range users {
		data = append(data, *toUserResponse(&users[i]))
	}
	return memberListResponse{Data: data}
}
