package transfer

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

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

// Export handles GET /export?format=csv|json|excel&ids=1,2,3
func (h *Handler) Export(c echo.Context) error {
	if _, err := user.GetCurrentUser(c); err != nil {
		return rest.NewUnauthorizedRequestError("user not authenticated")
	}

	var ids []int64
	if raw := c.QueryParam("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id := parser.ProductID(part)
			if id == 0 {
				return rest.NewBadRequestError("invalid product id in ids parameter")
			}
			ids = append(ids, id)
		}
	}

	file, apiErr := h.service.Export(c.Request().Context(), c.QueryParam("format"), ids)
	if apiErr != nil {
		return apiErr
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}

// Import handles POST /import with a multipart "file" field. The format is
// taken from the uploaded file's extension.
func (h *Handler) Import(c echo.Context) error {
	if _, err := user.GetCurrentUser(c); err != nil {
		return rest.NewUnauthorizedRequestError("user not authenticated")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return rest.NewBadRequestError("file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return rest.NewBadRequestError("failed to open uploaded file")
	}
	defer src.Close()

	format := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	result, apiErr := h.service.Import(c.Request().Context(), format, src)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, result)
}
