package auth

import (
	"net/http"

	"github.com/digitalogic/catalog/pkg/auth"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Signup(c echo.Context) error {
	var input SignupInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("failed to parse request body")
	}

	result, apiErr := h.service.Signup(c.Request().Context(), input, c.Request().UserAgent(), c.RealIP())
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

func (h *Handler) Signin(c echo.Context) error {
	var credentials SigninInput
	if err := c.Bind(&credentials); err != nil {
		return rest.NewUnprocessableEntity("failed to parse request body")
	}

	result, apiErr := h.service.Signin(c.Request().Context(), credentials, c.Request().UserAgent(), c.RealIP())
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

func (h *Handler) Refresh(c echo.Context) error {
	var input RefreshInput
	if err := c.Bind(&input); err != nil || input.RefreshToken == "" {
		return rest.NewUnauthorizedRequestError("refresh token is required")
	}

	tokens, apiErr := h.service.RefreshTokens(c.Request().Context(), input.RefreshToken, c.Request().UserAgent(), c.RealIP())
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, tokens)
}

func (h *Handler) Logout(c echo.Context) error {
	var input RefreshInput
	if err := c.Bind(&input); err == nil && input.RefreshToken != "" {
		_ = h.service.Logout(c.Request().Context(), input.RefreshToken)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

func (h *Handler) LogoutAll(c echo.Context) error {
	userID, apiErr := auth.GetUserID(c)
	if apiErr != nil {
		return apiErr
	}

	if err := h.service.LogoutAll(c.Request().Context(), userID); err != nil {
		return rest.NewInternalServerError("failed to revoke tokens")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "all sessions revoked",
	})
}
