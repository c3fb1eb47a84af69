package products

import (
	"net/http"

	"github.com/digitalogic/catalog/internal/user"
	"github.com/digitalogic/catalog/pkg/parser"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) requireUser(c echo.Context) *rest.ApiErr {
	if _, err := user.GetCurrentUser(c); err != nil {
		return rest.NewUnauthorizedRequestError("user not authenticated")
	}
	return nil
}

// GetProducts handles GET /products
func (h *Handler) GetProducts(c echo.Context) error {
	if apiErr := h.requireUser(c); apiErr != nil {
		return apiErr
	}

	var filter ListFilter
	if err := c.Bind(&filter); err != nil {
		return rest.NewUnprocessableEntity("failed to parse query parameters")
	}

	result, apiErr := h.service.List(c.Request().Context(), filter)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}

// GetProductCount handles GET /products/count
func (h *Handler) GetProductCount(c echo.Context) error {
	if apiErr := h.requireUser(c); apiErr != nil {
		return apiErr
	}

	var filter ListFilter
	if err := c.Bind(&filter); err != nil {
		return rest.NewUnprocessableEntity("failed to parse query parameters")
	}

	total, apiErr := h.service.Count(c.Request().Context(), filter)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, map[string]int64{"total": total})
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c echo.Context) error {
	if apiErr := h.requireUser(c); apiErr != nil {
		return apiErr
	}

	id := parser.ProductID(c.Param("id"))
	if id == 0 {
		return rest.NewBadRequestError("invalid product id")
	}

	result, apiErr := h.service.Get(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}

// GetProductBySKU handles GET /products/sku/:sku
func (h *Handler) GetProductBySKU(c echo.Context) error {
	if apiErr := h.requireUser(c); apiErr != nil {
		return apiErr
	}

	result, apiErr := h.service.GetBySKU(c.Request().Context(), c.Param("sku"))
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}

// UpdateProduct handles PUT /products/:id
func (h *Handler) UpdateProduct(c echo.Context) error {
	if apiErr := h.requireUser(c); apiErr != nil {
		return apiErr
	}

	id := parser.ProductID(c.Param("id"))
	if id == 0 {
		return rest.NewBadRequestError("invalid product id")
	}

	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("failed to parse request body")
	}

	result, apiErr := h.service.Update(c.Request().Context(), id, input)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}

// UpdateProductBySKU handles PUT /products/sku/:sku
func (h *Handler) UpdateProductBySKU(c echo.Context) error {
	if apiErr := h.requireUser(c); apiErr != nil {
		return apiErr
	}

	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("failed to parse request body")
	}

	result, apiErr := h.service.UpdateBySKU(c.Request().Context(), c.Param("sku"), input)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}

// BatchUpdate handles POST /products/batch
func (h *Handler) BatchUpdate(c echo.Context) error {
	if apiErr := h.requireUser(c); apiErr != nil {
		return apiErr
	}

	var input BatchUpdateInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("failed to parse request body")
	}

	result, apiErr := h.service.BulkUpdate(c.Request().Context(), input)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}

// GetMetadata handles GET /products/:id/metadata
func (h *Handler) GetMetadata(c echo.Context) error {
	if apiErr := h.requireUser(c); apiErr != nil {
		return apiErr
	}

	id := parser.ProductID(c.Param("id"))
	if id == 0 {
		return rest.NewBadRequestError("invalid product id")
	}

	result, apiErr := h.service.Metadata(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}
