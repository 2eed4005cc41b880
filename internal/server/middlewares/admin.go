package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/apperror"
	"github.com/mdouchement/echoppe/internal/model"
)

// Admin restricts a route to administrator accounts.
// It must be registered after CurrentUser.
func Admin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get(CurrentUserContextKey).(*model.User)
			if !ok || !user.Admin {
				return apperror.NewWithCode(http.StatusForbidden, "You are not allowed to access this page.")
			}
			return next(c)
		}
	}
}
