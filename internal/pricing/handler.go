package pricing

import (
	"net/http"

	"github.com/digitalogic/catalog/internal/user"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Recalculate handles POST /pricing/recalculate
func (h *Handler) Recalculate(c echo.Context) error {
	_, err := user.GetCurrentUser(c)
	if err != nil {
		return rest.NewUnauthorizedRequestError("user not authenticated")
	}

	result, apiErr := h.service.RecalculateAll(c.Request().Context())
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}
