package server

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/internal/apperror"
	"github.com/mdouchement/echoppe/internal/database"
	"github.com/mdouchement/echoppe/internal/model"
	sess "github.com/mdouchement/echoppe/internal/server/session"
	"github.com/mdouchement/echoppe/internal/server/service"
	"github.com/mdouchement/echoppe/internal/uploads"
	"github.com/pkg/errors"
)

// item contains all product listing handlers.
type item struct {
	db      database.Client
	uploads *uploads.Store
}

///// Listing
////
//

// List renders all the products.
func (h *item) List(c echo.Context) error {
	items, err := h.db.FindItems()
	if err != nil {
		return errors.Wrap(err, "could not list items")
	}

	return render(c, http.StatusOK, "products.html", service.M{
		"Items": items,
	})
}

///// Detail & comments
////
//

// Show renders one product with its comments and the comment form.
func (h *item) Show(c echo.Context) error {
	record, err := h.find(c)
	if err != nil {
		return err
	}

	comments, err := h.comments(record)
	if err != nil {
		return err
	}

	return render(c, http.StatusOK, "show_product.html", service.M{
		"Item":     record,
		"Comments": comments,
	})
}

// Comment inserts a comment on a product for the signed-in user.
func (h *item) Comment(c echo.Context) error {
	record, err := h.find(c)
	if err != nil {
		return err
	}

	user := currentUser(c)
	if user == nil {
		if err := sess.Flash(c, "You need to login or register to comment."); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	// Filter params
	var params service.CommentParams
	if err := c.Bind(&params); err != nil {
		return apperror.NewWithCode(http.StatusBadRequest, "Could not read the submitted form.")
	}
	if err := c.Validate(&params); err != nil {
		comments, cerr := h.comments(record)
		if cerr != nil {
			return cerr
		}
		return render(c, http.StatusOK, "show_product.html", service.M{
			"Item":     record,
			"Comments": comments,
			"Errors":   formErrors(err),
		})
	}

	if _, err := service.NewItem(h.db, h.uploads).Comment(user, record, params); err != nil {
		return err
	}

	// Redirect after post so a refresh cannot duplicate the comment.
	return c.Redirect(http.StatusSeeOther, "/item/"+record.ID)
}

///// Creation
////
//

// New renders the product creation form.
func (h *item) New(c echo.Context) error {
	return render(c, http.StatusOK, "add_item.html", service.M{
		"IsEdit": false,
		"Form":   service.ItemParams{},
	})
}

// Create validates the form and inserts a new product owned by the current user.
func (h *item) Create(c echo.Context) error {
	params, image, errs := h.bind(c)
	if image == nil {
		errs = append(errs, "image is required")
	}
	if len(errs) > 0 {
		return render(c, http.StatusOK, "add_item.html", service.M{
			"IsEdit": false,
			"Form":   params,
			"Errors": errs,
		})
	}

	_, err := service.NewItem(h.db, h.uploads).Create(currentUser(c), params, image)
	if err != nil {
		if msg := formError(err); msg != "" {
			return render(c, http.StatusOK, "add_item.html", service.M{
				"IsEdit": false,
				"Form":   params,
				"Errors": []string{msg},
			})
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/all_procucts")
}

///// Edition
////
//

// Edit renders the product edition form pre-filled with the stored values.
func (h *item) Edit(c echo.Context) error {
	record, err := h.find(c)
	if err != nil {
		return err
	}

	return render(c, http.StatusOK, "add_item.html", service.M{
		"IsEdit": true,
		"Item":   record,
		"Form": service.ItemParams{
			Name:  record.Name,
			Price: record.Price,
			Body:  record.Body,
		},
	})
}

// Update applies the submitted changes to a product.
// The stored image is kept when no new file is uploaded.
func (h *item) Update(c echo.Context) error {
	record, err := h.find(c)
	if err != nil {
		return err
	}

	params, image, errs := h.bind(c)
	if len(errs) > 0 {
		return render(c, http.StatusOK, "add_item.html", service.M{
			"IsEdit": true,
			"Item":   record,
			"Form":   params,
			"Errors": errs,
		})
	}

	if err := service.NewItem(h.db, h.uploads).Update(record, params, image); err != nil {
		if msg := formError(err); msg != "" {
			return render(c, http.StatusOK, "add_item.html", service.M{
				"IsEdit": true,
				"Item":   record,
				"Form":   params,
				"Errors": []string{msg},
			})
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/item/"+record.ID)
}

///// Deletion
////
//

// Delete removes a product and its comments.
func (h *item) Delete(c echo.Context) error {
	record, err := h.find(c)
	if err != nil {
		return err
	}

	if err := service.NewItem(h.db, h.uploads).Delete(record); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/all_procucts")
}

///// Helpers
////
//

// find returns the item targeted by the route or a not found error.
func (h *item) find(c echo.Context) (*model.Item, error) {
	record, err := h.db.FindItem(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, apperror.NewWithCode(http.StatusNotFound, "This product does not exist.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return record, nil
}

// comments returns the comments of the given item with their resolved authors.
func (h *item) comments(record *model.Item) ([]service.M, error) {
	comments, err := h.db.FindCommentsByItemID(record.ID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list comments")
	}

	views := make([]service.M, 0, len(comments))
	for _, comment := range comments {
		author, err := h.db.FindUser(comment.UserID)
		if err != nil {
			if h.db.IsNotFound(err) {
				continue
			}
			return nil, errors.Wrap(err, "could not get comment author")
		}
		views = append(views, service.M{
			"Comment": comment,
			"Author":  author,
		})
	}
	return views, nil
}

// bind extracts and validates the item form. A nil image means no file was submitted.
func (h *item) bind(c echo.Context) (params service.ItemParams, image *multipart.FileHeader, errs []string) {
	if err := c.Bind(&params); err != nil {
		// The only field that can fail the binding is the numeric price.
		params.Name = c.FormValue("name")
		params.Body = c.FormValue("body")
		errs = append(errs, "price must be a positive number")
	} else if err := c.Validate(&params); err != nil {
		errs = formErrors(err)
	}

	image, err := c.FormFile("image")
	if err != nil || image.Filename == "" || image.Size == 0 {
		// Browsers submit an empty part when no file is selected.
		image = nil
	}

	return params, image, errs
}

// formError maps business failures to a form message, or returns an empty
// string for errors that must bubble up.
func formError(err error) string {
	switch errors.Cause(err) {
	case service.ErrNameTaken:
		return "this product name is already used"
	case uploads.ErrUnsupportedType:
		return "image must be a jpg, jpeg or png file"
	}
	return ""
}
