package server_test

import (
	"net/http"
	"testing"

	"github.com/appleboy/gofight"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestItemList(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")
	createItem(engine, ctrl, admin, "Widget", "10", "A widget of the finest craft.")

	gofight.New().GET("/all_procucts").
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.Contains(t, r.Body.String(), "Widget")
		})
}

func TestRequestItemShow(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")
	item := createItem(engine, ctrl, admin, "Widget", "10", "A widget of the finest craft.")
	assert.NotEmpty(t, item.ImagePath)

	gofight.New().GET("/item/"+item.ID).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.Contains(t, r.Body.String(), "Widget")
			assert.Contains(t, r.Body.String(), item.ImagePath)
		})
}

func TestRequestItemShowUnknown(t *testing.T) {
	engine, _, cleanup := setup()
	defer cleanup()

	gofight.New().GET("/item/missing").
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, r.Code)
			assert.Contains(t, r.Body.String(), "This product does not exist.")
		})
}

func TestRequestItemAdminOnlyRoutes(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")
	user := register(engine, "Hugues", "hugues@nowhere.lan", "password42")
	item := createItem(engine, ctrl, admin, "Widget", "10", "A widget of the finest craft.")

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/add_item"},
		{http.MethodPost, "/add_item"},
		{http.MethodGet, "/edit-item/" + item.ID},
		{http.MethodPost, "/edit-item/" + item.ID},
		{http.MethodGet, "/delete/" + item.ID},
	}

	for _, route := range routes {
		// Anonymous and non-admin sessions are both rejected.
		for _, cookie := range []string{"", user} {
			r := gofight.New()
			var rc *gofight.RequestConfig
			if route.method == http.MethodPost {
				rc = r.POST(route.path)
			} else {
				rc = r.GET(route.path)
			}
			if cookie != "" {
				rc.SetCookie(gofight.H{session.Name: cookie})
			}
			rc.Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
				assert.Equal(t, http.StatusForbidden, r.Code, route.method+" "+route.path)
			})
		}
	}

	// The item survived all those rejections.
	_, err := ctrl.Database.FindItem(item.ID)
	assert.NoError(t, err)
}

func TestRequestItemCreateValidation(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")

	// Missing price and image.
	payload, contentType := itemForm("Widget", "", "A widget.", "")
	gofight.New().POST("/add_item").
		SetCookie(gofight.H{session.Name: admin}).
		SetHeader(gofight.H{echo.HeaderContentType: contentType}).
		SetBody(payload).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.Contains(t, r.Body.String(), "image is required")
		})

	// Unsupported image type.
	payload, contentType = itemForm("Widget", "10", "A widget.", "malware.exe")
	gofight.New().POST("/add_item").
		SetCookie(gofight.H{session.Name: admin}).
		SetHeader(gofight.H{echo.HeaderContentType: contentType}).
		SetBody(payload).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.Contains(t, r.Body.String(), "jpg, jpeg or png")
		})

	items, err := ctrl.Database.FindItems()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRequestItemCreateDuplicateName(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")
	createItem(engine, ctrl, admin, "Widget", "10", "A widget of the finest craft.")

	payload, contentType := itemForm("Widget", "20", "Another widget.", "widget2.png")
	gofight.New().POST("/add_item").
		SetCookie(gofight.H{session.Name: admin}).
		SetHeader(gofight.H{echo.HeaderContentType: contentType}).
		SetBody(payload).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.Contains(t, r.Body.String(), "already used")
		})

	items, err := ctrl.Database.FindItems()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRequestItemUpdateKeepsImage(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")
	item := createItem(engine, ctrl, admin, "Widget", "10", "A widget of the finest craft.")
	require.NotEmpty(t, item.ImagePath)

	// No file part at all.
	payload, contentType := itemForm("Widget deluxe", "15", "Now with more widget.", "")
	gofight.New().POST("/edit-item/"+item.ID).
		SetCookie(gofight.H{session.Name: admin}).
		SetHeader(gofight.H{echo.HeaderContentType: contentType}).
		SetBody(payload).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusSeeOther, r.Code)
			assert.Equal(t, "/item/"+item.ID, r.HeaderMap.Get(echo.HeaderLocation))
		})

	updated, err := ctrl.Database.FindItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget deluxe", updated.Name)
	assert.Equal(t, int64(15), updated.Price)
	assert.Equal(t, item.ImagePath, updated.ImagePath, "absent upload keeps the stored image")
}

func TestRequestItemDeleteCascadesComments(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")
	user := register(engine, "Hugues", "hugues@nowhere.lan", "password42")
	item := createItem(engine, ctrl, admin, "Widget", "10", "A widget of the finest craft.")

	gofight.New().POST("/item/"+item.ID).
		SetCookie(gofight.H{session.Name: user}).
		SetForm(gofight.H{"body": "Wonderful widget."}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusSeeOther, r.Code)
		})

	gofight.New().GET("/delete/"+item.ID).
		SetCookie(gofight.H{session.Name: admin}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusSeeOther, r.Code)
			assert.Equal(t, "/all_procucts", r.HeaderMap.Get(echo.HeaderLocation))
		})

	_, err := ctrl.Database.FindItem(item.ID)
	assert.True(t, ctrl.Database.IsNotFound(err))

	comments, err := ctrl.Database.FindCommentsByItemID(item.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestRequestCommentRequiresLogin(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")
	item := createItem(engine, ctrl, admin, "Widget", "10", "A widget of the finest craft.")

	gofight.New().POST("/item/"+item.ID).
		SetForm(gofight.H{"body": "Anonymous opinion."}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusSeeOther, r.Code)
			assert.Equal(t, "/login", r.HeaderMap.Get(echo.HeaderLocation))
		})

	comments, err := ctrl.Database.FindCommentsByItemID(item.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestRequestStorefrontEndToEnd(t *testing.T) {
	engine, ctrl, cleanup := setup()
	defer cleanup()

	// First registered user is the admin and stocks the shop.
	admin := register(engine, "George", "george.abitbol@nowhere.lan", "password42")
	item := createItem(engine, ctrl, admin, "Widget", "10", "A widget of the finest craft.")

	// Anyone can browse the product.
	gofight.New().GET("/item/"+item.ID).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.Contains(t, r.Body.String(), "Widget")
		})

	// A customer registers and comments.
	customer := register(engine, "Hugues", "hugues@nowhere.lan", "password42")
	gofight.New().POST("/item/"+item.ID).
		SetCookie(gofight.H{session.Name: customer}).
		SetForm(gofight.H{"body": "Best of all time, all categories."}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusSeeOther, r.Code)
			assert.Equal(t, "/item/"+item.ID, r.HeaderMap.Get(echo.HeaderLocation))
		})

	comments, err := ctrl.Database.FindCommentsByItemID(item.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Best of all time, all categories.", comments[0].Body)
	assert.Equal(t, item.ID, comments[0].ItemID)

	author, err := ctrl.Database.FindUser(comments[0].UserID)
	require.NoError(t, err)
	assert.Equal(t, "hugues@nowhere.lan", author.Email)

	// The comment and its author avatar show up on the page.
	gofight.New().GET("/item/"+item.ID).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Contains(t, r.Body.String(), "Best of all time, all categories.")
			assert.Contains(t, r.Body.String(), "gravatar.com/avatar/")
		})
}
