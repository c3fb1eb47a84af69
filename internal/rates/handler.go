package rates

import (
	"context"
	"net/http"

	"github.com/digitalogic/catalog/internal/pricing"
	"github.com/digitalogic/catalog/internal/user"
	"github.com/digitalogic/catalog/internal/webhooks"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/labstack/echo/v4"
)

type recalculator interface {
	RecalculateAll(ctx context.Context) (*pricing.RecalculateOutput, *rest.ApiErr)
}

type dispatcher interface {
	Dispatch(event string, payload any)
}

type Handler struct {
	service Service
	pricing recalculator
	events  dispatcher
}

func NewHandler(service Service, pricingService recalculator, events dispatcher) *Handler {
	return &Handler{service: service, pricing: pricingService, events: events}
}

// GetRates handles GET /currency
func (h *Handler) GetRates(c echo.Context) error {
	if _, err := user.GetCurrentUser(c); err != nil {
		return rest.NewUnauthorizedRequestError("user not authenticated")
	}

	return c.JSON(http.StatusOK, h.service.Rates(c.Request().Context()))
}

type updateRatesResponse struct {
	Rates         RatesOutput                `json:"rates"`
	Recalculation *pricing.RecalculateOutput `json:"recalculation,omitempty"`
}

// UpdateRates handles POST /currency. When the request asks for it, every
// dynamically priced product is repriced against the new rates before the
// response is written.
func (h *Handler) UpdateRates(c echo.Context) error {
	if _, err := user.GetCurrentUser(c); err != nil {
		return rest.NewUnauthorizedRequestError("user not authenticated")
	}

	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("failed to parse request body")
	}

	rates, apiErr := h.service.Set(c.Request().Context(), input)
	if apiErr != nil {
		return apiErr
	}

	resp := updateRatesResponse{Rates: *rates}
	if input.Recalculate {
		result, apiErr := h.pricing.RecalculateAll(c.Request().Context())
		if apiErr != nil {
			return apiErr
		}
		resp.Recalculation = result
	}

	h.events.Dispatch(webhooks.EventCurrencyUpdated, rates)
	return c.JSON(http.StatusOK, resp)
}
