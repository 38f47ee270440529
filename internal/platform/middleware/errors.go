package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carestack/bedrock/internal/platform/apperror"
)

// ErrorHandler converts engine errors into JSON responses using the shared
// taxonomy, so every handler can return the service error unchanged.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		code := "internal"
		msg := "internal server error"

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			code = http.StatusText(status)
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		} else if kind := apperror.KindOf(err); kind != apperror.KindUnknown {
			status = apperror.HTTPStatus(err)
			code = kind.String()
			msg = err.Error()
		}

		_ = c.JSON(status, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    code,
				"message": msg,
			},
		})
	}
}
