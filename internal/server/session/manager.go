// Package session manages the cookie session holding the signed-in user and
// the one-shot flash messages.
package session

import (
	esession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Name is the name of the session cookie.
	Name = "echoppe_session"

	userIDKey = "user_id"
)

// SignIn binds the session cookie to the given user.
func SignIn(c echo.Context, user *model.User) error {
	sess, err := esession.Get(Name, c)
	if err != nil {
		return errors.Wrap(err, "could not get session")
	}

	sess.Values[userIDKey] = user.ID
	return errors.Wrap(sess.Save(c.Request(), c.Response()), "could not save session")
}

// SignOut drops the session cookie.
func SignOut(c echo.Context) error {
	sess, err := esession.Get(Name, c)
	if err != nil {
		return errors.Wrap(err, "could not get session")
	}

	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return errors.Wrap(sess.Save(c.Request(), c.Response()), "could not save session")
}

// UserID returns the signed-in user id or an empty string.
func UserID(c echo.Context) string {
	sess, err := esession.Get(Name, c)
	if err != nil {
		return ""
	}

	id, _ := sess.Values[userIDKey].(string)
	return id
}

// Flash records a message to be displayed on the next rendered page.
func Flash(c echo.Context, message string) error {
	sess, err := esession.Get(Name, c)
	if err != nil {
		return errors.Wrap(err, "could not get session")
	}

	sess.AddFlash(message)
	return errors.Wrap(sess.Save(c.Request(), c.Response()), "could not save session")
}

// Flashes consumes and returns the pending flash messages.
func Flashes(c echo.Context) []string {
	sess, err := esession.Get(Name, c)
	if err != nil {
		return nil
	}

	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}

	// Reading flashes removes them from the session, the cookie must be updated.
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		logrus.WithError(err).Warn("could not save session after consuming flashes")
	}

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(string); ok {
			messages = append(messages, m)
		}
	}
	return messages
}
