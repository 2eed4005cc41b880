package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/apperror"
	"github.com/sirupsen/logrus"
)

// HTTPErrorHandler is a middleware that renders errors as HTML pages.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	switch err := err.(type) {
	case *echo.HTTPError:
		render(c, err.Code, fmt.Sprintf("%v", err.Message))
	case *apperror.Error:
		status := apperror.StatusCode(err)
		if status < 500 {
			render(c, status, err.Message)
			return
		}

		internal(err, c)
	default:
		internal(err, c)
	}
}

func internal(err error, c echo.Context) {
	id := uuid.Must(uuid.NewV4()).String()
	logrus.WithField("error_id", id).Errorf("%+v", err)

	render(c, http.StatusInternalServerError, fmt.Sprintf("Unexpected error (id: %s)", id))
}

func render(c echo.Context, code int, message string) {
	data := map[string]any{
		"Code":        code,
		"Status":      http.StatusText(code),
		"Message":     message,
		"CurrentUser": c.Get(CurrentUserContextKey),
	}
	if err := c.Render(code, "error.html", data); err != nil {
		_ = c.String(code, message)
	}
}
