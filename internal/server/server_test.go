package server_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/appleboy/gofight"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/database"
	"github.com/mdouchement/echoppe/internal/model"
	"github.com/mdouchement/echoppe/internal/server"
	"github.com/mdouchement/echoppe/internal/server/session"
	"github.com/mdouchement/echoppe/internal/uploads"
)

func setup() (engine *echo.Echo, ctrl server.Controller, cleanup func()) {
	tmpfile, err := os.CreateTemp("", "echoppe.*.db")
	if err != nil {
		panic(err)
	}
	filename := tmpfile.Name()
	tmpfile.Close()

	db, err := database.StormOpen(filename)
	if err != nil {
		panic(err)
	}

	uploadsdir, err := os.MkdirTemp("", "echoppe.uploads.*")
	if err != nil {
		panic(err)
	}
	store, err := uploads.NewStore(uploadsdir)
	if err != nil {
		panic(err)
	}

	ctrl = server.Controller{
		Version:         "test",
		Database:        db,
		Uploads:         store,
		NoRegistration:  false,
		SessionHashKey:  []byte("00000000000000000000000000000000"),
		SessionBlockKey: []byte("11111111111111111111111111111111"),
	}
	engine = server.EchoEngine(ctrl)

	return engine, ctrl, func() {
		db.Close()
		os.RemoveAll(filename)
		os.RemoveAll(uploadsdir)
	}
}

// register signs up a user through the HTTP stack and returns its session cookie.
// The first registered user is the admin.
func register(engine *echo.Echo, name, email, password string) (cookie string) {
	gofight.New().POST("/register").
		SetForm(gofight.H{
			"name":     name,
			"email":    email,
			"password": password,
		}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			if r.Code != http.StatusSeeOther {
				panic("registration failed: " + r.Body.String())
			}
			cookie = sessionCookie(r)
		})
	return cookie
}

// sessionCookie extracts the session cookie value from the response.
func sessionCookie(r gofight.HTTPResponse) string {
	var value string
	for _, line := range r.HeaderMap.Values(echo.HeaderSetCookie) {
		if !strings.HasPrefix(line, session.Name+"=") {
			continue
		}
		value = strings.TrimPrefix(strings.SplitN(line, ";", 2)[0], session.Name+"=")
	}
	return value
}

// pngPixel is a well-formed 1x1 PNG used as upload payload.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// itemForm builds a multipart item form. An empty filename omits the file part.
func itemForm(name, price, body, filename string) (payload, contentType string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("name", name)
	w.WriteField("price", price)
	w.WriteField("body", body)
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		if err != nil {
			panic(err)
		}
		fw.Write(pngPixel)
	}
	w.Close()
	return buf.String(), w.FormDataContentType()
}

// createItem inserts an item through POST /add_item and returns its record.
func createItem(engine *echo.Echo, ctrl server.Controller, cookie, name, price, body string) *model.Item {
	payload, contentType := itemForm(name, price, body, "widget.png")
	gofight.New().POST("/add_item").
		SetCookie(gofight.H{session.Name: cookie}).
		SetHeader(gofight.H{echo.HeaderContentType: contentType}).
		SetBody(payload).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			if r.Code != http.StatusSeeOther {
				panic("item creation failed: " + r.Body.String())
			}
		})

	items, err := ctrl.Database.FindItems()
	if err != nil {
		panic(err)
	}
	for _, item := range items {
		if item.Name == name {
			return item
		}
	}
	panic("item not found after creation")
}
