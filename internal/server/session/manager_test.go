package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	esession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/model"
	"github.com/mdouchement/echoppe/internal/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInAndUserID(t *testing.T) {
	engine := newEngine()

	user := &model.User{Name: "George"}
	user.ID = "42a1bb9b-0000-4000-8000-000000000000"

	engine.GET("/in", func(c echo.Context) error {
		require.NoError(t, session.SignIn(c, user))
		return c.NoContent(http.StatusOK)
	})
	engine.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, session.UserID(c))
	})

	rec := request(engine, "/in", "")
	cookie := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, cookie)

	rec = request(engine, "/whoami", cookie)
	assert.Equal(t, user.ID, rec.Body.String())
}

func TestSignOut(t *testing.T) {
	engine := newEngine()

	user := &model.User{Name: "George"}
	user.ID = "42a1bb9b-0000-4000-8000-000000000000"

	engine.GET("/in", func(c echo.Context) error {
		require.NoError(t, session.SignIn(c, user))
		return c.NoContent(http.StatusOK)
	})
	engine.GET("/out", func(c echo.Context) error {
		require.NoError(t, session.SignOut(c))
		return c.String(http.StatusOK, session.UserID(c))
	})

	rec := request(engine, "/in", "")
	cookie := rec.Header().Get("Set-Cookie")

	rec = request(engine, "/out", cookie)
	assert.Empty(t, rec.Body.String())
}

func TestFlashes(t *testing.T) {
	engine := newEngine()

	engine.GET("/flash", func(c echo.Context) error {
		require.NoError(t, session.Flash(c, "You need to login or register to comment."))
		return c.NoContent(http.StatusOK)
	})
	engine.GET("/read", func(c echo.Context) error {
		return c.JSON(http.StatusOK, session.Flashes(c))
	})

	rec := request(engine, "/flash", "")
	cookie := rec.Header().Get("Set-Cookie")

	rec = request(engine, "/read", cookie)
	assert.JSONEq(t, `["You need to login or register to comment."]`, rec.Body.String())

	// Flashes are one-shot, a second read with the updated cookie is empty.
	cookie = rec.Header().Get("Set-Cookie")
	rec = request(engine, "/read", cookie)
	assert.Equal(t, "null\n", rec.Body.String())
}

func newEngine() *echo.Echo {
	engine := echo.New()
	engine.Use(esession.Middleware(sessions.NewCookieStore([]byte("00000000000000000000000000000000"))))
	return engine
}

func request(engine *echo.Echo, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}
