package middlewares

import (
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/database"
	"github.com/mdouchement/echoppe/internal/server/session"
	"github.com/pkg/errors"
)

// CurrentUserContextKey is the key to retrieve the current_user from echo.Context.
const CurrentUserContextKey = "current_user"

// CurrentUser loads the signed-in user from the session cookie and stores it
// into echo.Context. Requests without a valid session go through anonymously.
func CurrentUser(db database.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := session.UserID(c)
			if id == "" {
				return next(c)
			}

			user, err := db.FindUser(id)
			if err != nil {
				if db.IsNotFound(err) {
					// The account no longer exists, drop the stale cookie.
					_ = session.SignOut(c)
					return next(c)
				}
				return errors.Wrap(err, "could not get access to database")
			}

			c.Set(CurrentUserContextKey, user)
			return next(c)
		}
	}
}
