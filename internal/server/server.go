package server

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	esession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/echoppe/internal/database"
	"github.com/mdouchement/echoppe/internal/model"
	"github.com/mdouchement/echoppe/internal/server/middlewares"
	sess "github.com/mdouchement/echoppe/internal/server/session"
	"github.com/mdouchement/echoppe/internal/server/service"
	"github.com/mdouchement/echoppe/internal/uploads"
)

// A Controller is an Inversion Of Control pattern used to init the server package.
type Controller struct {
	Version        string
	Database       database.Client
	Uploads        *uploads.Store
	NoRegistration bool
	// Session cookie keys
	SessionHashKey  []byte
	SessionBlockKey []byte
}

// EchoEngine instantiates the web server.
func EchoEngine(ctrl Controller) *echo.Echo {
	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.Gzip())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
	}))

	engine.Renderer = newRenderer()
	engine.Validator = &formValidator{validate: validator.New()}
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler

	store := sessions.NewCookieStore(ctrl.SessionHashKey, ctrl.SessionBlockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	engine.Use(esession.Middleware(store))
	engine.Use(middlewares.CurrentUser(ctrl.Database))

	// Uploaded product images.
	engine.Static("/static/assets/uploads", ctrl.Uploads.Dir())

	////////////
	// Router //
	////////////

	router := engine.Group("")
	restricted := router.Group("", middlewares.Admin())

	//
	// page handlers
	//
	pages := &page{}
	router.GET("/", pages.Home)
	router.GET("/about", pages.About)
	router.GET("/terms_of_service", pages.TermsOfService)
	router.GET("/privacy_policy", pages.PrivacyPolicy)

	//
	// auth handlers
	//
	auth := &auth{
		db: ctrl.Database,
	}
	if !ctrl.NoRegistration {
		router.GET("/register", auth.RegisterForm)
		router.POST("/register", auth.Register)
	}
	router.GET("/login", auth.LoginForm)
	router.POST("/login", auth.Login)
	router.GET("/logout", auth.Logout)

	//
	// item handlers
	//
	item := &item{
		db:      ctrl.Database,
		uploads: ctrl.Uploads,
	}
	router.GET("/all_procucts", item.List)
	router.GET("/item/:id", item.Show)
	router.POST("/item/:id", item.Comment)
	restricted.GET("/add_item", item.New)
	restricted.POST("/add_item", item.Create)
	restricted.GET("/edit-item/:id", item.Edit)
	restricted.POST("/edit-item/:id", item.Update)
	restricted.GET("/delete/:id", item.Delete)

	return engine
}

// PrintRoutes prints the Echo engine exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

func currentUser(c echo.Context) *model.User {
	user, ok := c.Get(middlewares.CurrentUserContextKey).(*model.User)
	if ok {
		return user
	}
	return nil
}

// render executes the named template with the common page context filled in.
func render(c echo.Context, code int, name string, data service.M) error {
	if data == nil {
		data = service.M{}
	}
	if _, ok := data["CurrentUser"]; !ok {
		data["CurrentUser"] = currentUser(c)
	}
	data["Flashes"] = sess.Flashes(c)
	return c.Render(code, name, data)
}

// formValidator exposes go-playground/validator through the echo.Validator interface.
type formValidator struct {
	validate *validator.Validate
}

func (v *formValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// formErrors converts validation failures into user displayable messages.
func formErrors(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Invalid form submission."}
	}

	messages := make([]string, 0, len(verrs))
	for _, verr := range verrs {
		field := strings.ToLower(verr.Field())
		switch verr.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "gt":
			messages = append(messages, field+" must be greater than "+verr.Param())
		default:
			messages = append(messages, field+" is invalid")
		}
	}
	return messages
}
