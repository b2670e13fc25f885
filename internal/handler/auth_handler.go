package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "userauth/internal/errors"
	"userauth/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// CreateUser godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.CreateUserInput true "Registration data"
// @Success 201 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/create [post]
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req service.CreateUserInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, badRequestBody())
	}

	res, err := h.authService.CreateUser(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, res)
}

// LoginUser godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) LoginUser(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, badRequestBody())
	}

	res, err := h.authService.LoginUser(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, res)
}

// ForgetPassword godoc
// @Summary Email a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.ForgotPasswordInput true "Account email"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/forget [post]
func (h *AuthHandler) ForgetPassword(c echo.Context) error {
	var req service.ForgotPasswordInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, badRequestBody())
	}

	res, err := h.authService.SendResetLink(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, res)
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.ResetPasswordInput true "Reset token and new password"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/resetPassword [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req service.ResetPasswordInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, badRequestBody())
	}

	res, err := h.authService.VerifyTokenAndResetPassword(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, res)
}

// GetTokenData godoc
// @Summary Return the claims of the presented session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/getTokenData [get]
func (h *AuthHandler) GetTokenData(c echo.Context) error {
	claims, ok := claimsFromContext(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthorized)
	}
	return respond(c, &service.Result{
		HTTPStatus: http.StatusOK,
		Message:    "Token data retrieved successfully",
		Data:       claims,
	})
}

// Logout godoc
// @Summary Revoke the presented session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := claimsFromContext(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthorized)
	}

	res, err := h.authService.Logout(c.Request().Context(), claims)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, res)
}
