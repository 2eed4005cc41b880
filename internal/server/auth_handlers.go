package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/apperror"
	"github.com/mdouchement/echoppe/internal/database"
	sess "github.com/mdouchement/echoppe/internal/server/session"
	"github.com/mdouchement/echoppe/internal/server/service"
	"github.com/pkg/errors"
)

// auth contains all authentication handlers.
type auth struct {
	db database.Client
}

///// Register
////
//

// RegisterForm renders the registration form.
func (h *auth) RegisterForm(c echo.Context) error {
	return render(c, http.StatusOK, "register.html", service.M{
		"Form": service.RegisterParams{},
	})
}

// Register handler is used to register the user.
func (h *auth) Register(c echo.Context) error {
	// Filter params
	var params service.RegisterParams
	if err := c.Bind(&params); err != nil {
		return apperror.NewWithCode(http.StatusBadRequest, "Could not read the submitted form.")
	}
	if err := c.Validate(&params); err != nil {
		return render(c, http.StatusOK, "register.html", service.M{
			"Form":   params,
			"Errors": formErrors(err),
		})
	}

	user, err := service.NewUser(h.db).Register(params)
	if err != nil {
		if errors.Cause(err) == service.ErrEmailRegistered {
			// Inform user about existing registration
			if err := sess.Flash(c, "You've already signed up with that email, log in instead!"); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return err
	}

	// Log in new user
	if err := sess.SignIn(c, user); err != nil {
		return errors.Wrap(err, "could not sign in the new user")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

///// Login
////
//

// LoginForm renders the login form.
func (h *auth) LoginForm(c echo.Context) error {
	return render(c, http.StatusOK, "login.html", service.M{
		"Form": service.LoginParams{},
	})
}

// Login authenticates a user and establishes its session.
func (h *auth) Login(c echo.Context) error {
	// Filter params
	var params service.LoginParams
	if err := c.Bind(&params); err != nil {
		return apperror.NewWithCode(http.StatusBadRequest, "Could not read the submitted form.")
	}
	if err := c.Validate(&params); err != nil {
		return render(c, http.StatusOK, "login.html", service.M{
			"Form":   params,
			"Errors": formErrors(err),
		})
	}

	user, err := service.NewUser(h.db).Login(params)
	switch errors.Cause(err) {
	case nil:
		// Continue below.
	case service.ErrUnknownEmail:
		if err := sess.Flash(c, "That email does not exist, please try again."); err != nil {
			return err
		}
		return render(c, http.StatusOK, "login.html", service.M{"Form": params})
	case service.ErrWrongPassword:
		if err := sess.Flash(c, "Password incorrect, please try again."); err != nil {
			return err
		}
		return render(c, http.StatusOK, "login.html", service.M{"Form": params})
	default:
		return err
	}

	if err := sess.SignIn(c, user); err != nil {
		return errors.Wrap(err, "could not sign in the user")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

///// Logout
////
//

// Logout terminates the current session.
func (h *auth) Logout(c echo.Context) error {
	if err := sess.SignOut(c); err != nil {
		return errors.Wrap(err, "could not sign out")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
