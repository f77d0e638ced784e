package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

// AuthHandler handles login, access-code verification, and registration.
type AuthHandler struct {
	auth    ports.AuthService
	members ports.MemberService
}

func NewAuthHandler(auth ports.AuthService, members ports.MemberService) *AuthHandler {
	return &AuthHandler{auth: auth, members: members}
}

// Login performs the primary credential check.
//
// @Summary      Log in as admin or member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Role selection and credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.auth.Authenticate(c.Request().Context(), req.Role, req.Identifier, req.Password)
	if err != nil {
		return err
	}

	switch result.Status {
	case ports.AuthAuthenticated:
		return c.JSON(http.StatusOK, loginResponse{
			Status: string(result.Status),
			Token:  result.Token,
			User:   toUserResponse(result.User),
		})
	case ports.AuthSecondFactorRequired:
		return c.JSON(http.StatusOK, loginResponse{
			Status: string(result.Status),
			UserID: result.PendingUserID,
		})
	default:
		return rejectionResponse(c, result.Reason)
	}
}

// VerifyToken checks the submitted one-time access code.
//
// @Summary      Verify the one-time access code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyTokenRequest  true  "Pending user id and access code"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/verify-token [post]
func (h *AuthHandler) VerifyToken(c echo.Context) error {
	var req verifyTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.auth.VerifySecondFactor(c.Request().Context(), req.UserID, req.Code)
	if err != nil {
		return err
	}

	if result.Status == ports.AuthAuthenticated {
		return c.JSON(http.StatusOK, loginResponse{
			Status: string(result.Status),
			Token:  result.Token,
			User:   toUserResponse(result.User),
		})
	}
	return rejectionResponse(c, result.Reason)
}

// Register submits a member self-registration.
//
// @Summary      Register a new member account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Member registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.members.Register(c.Request().Context(), ports.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		FullName:        req.FullName,
		FieldName:       req.FieldName,
		NIA:             req.NIA,
		MembershipLevel: req.MembershipLevel,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.JSON(http.StatusConflict, errorResponse{Error: "username or NIA already registered"})
		}
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "registration submitted, awaiting admin approval",
		User:    toUserResponse(user),
	})
}

// rejectionResponse maps a RejectReason to its HTTP status and message.
// Causes that could leak account existence share one generic message.
func rejectionResponse(c echo.Context, reason ports.RejectReason) error {
	switch reason {
	case ports.ReasonInvalidRole:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid role selection"})
	case ports.ReasonInactiveAccount:
		return c.JSON(http.StatusForbidden, errorResponse{Error: "account pending admin approval"})
	case ports.ReasonNoPendingLogin:
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "no pending login, please log in first"})
	case ports.ReasonTokenInvalid:
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "access code invalid or already used"})
	case ports.ReasonTokenExpired:
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "access code expired, request a new one"})
	case ports.ReasonWrongCode:
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "wrong access code"})
	default:
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	}
}
