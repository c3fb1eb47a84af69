package audit

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

// GetLogs handles GET /logs
func (h *Handler) GetLogs(c echo.Context) error {
	_, err := user.GetCurrentUser(c)
	if err != nil {
		return rest.NewUnauthorizedRequestError("user not authenticated")
	}

	var filter Filter
	if err := c.Bind(&filter); err != nil {
		return rest.NewUnprocessableEntity("failed to parse query parameters")
	}

	result, apiErr := h.service.List(c.Request().Context(), filter)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}
