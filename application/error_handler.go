package application

import (
	"net/http"

	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *Application) CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var code int
	var message string
	var causes []rest.Causes

	if apiErr, ok := err.(*rest.ApiErr); ok {
		code = apiErr.Code
		message = apiErr.Message
		causes = apiErr.Causes
	} else if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(he.Code)
		}
	} else {
		code = http.StatusInternalServerError
		message = "internal server error"
		a.Logger.Error("unhandled error", zap.Error(err))
	}

	apiErr := &rest.ApiErr{
		Message: message,
		Err:     http.StatusText(code),
		Code:    code,
		Causes:  causes,
	}
	if err := c.JSON(code, apiErr); err != nil {
		a.Logger.Error("failed to write error response", zap.Error(err))
	}
}
