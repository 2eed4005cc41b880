package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// page contains all static page handlers.
type page struct{}

// Home renders the landing page.
func (h *page) Home(c echo.Context) error {
	return render(c, http.StatusOK, "index.html", nil)
}

// About renders the about page.
func (h *page) About(c echo.Context) error {
	return render(c, http.StatusOK, "about.html", nil)
}

// TermsOfService renders the terms of service page.
func (h *page) TermsOfService(c echo.Context) error {
	return render(c, http.StatusOK, "tos.html", nil)
}

// PrivacyPolicy renders the privacy policy page.
func (h *page) PrivacyPolicy(c echo.Context) error {
	return render(c, http.StatusOK, "pp.html", nil)
}
