package service

import (
	"mime/multipart"
	"path"

	"github.com/mdouchement/echoppe/internal/database"
	"github.com/mdouchement/echoppe/internal/model"
	"github.com/mdouchement/echoppe/internal/uploads"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNameTaken is returned when an item with the same name already exists.
var ErrNameTaken = errors.New("item name already taken")

// imagePrefix is the path, relative to the static assets root, under which
// uploaded images are exposed.
const imagePrefix = "assets/uploads"

type (
	// An ItemService handles the lifecycle of product listings and their comments.
	ItemService interface {
		// Create stores the image and inserts a new item owned by user.
		Create(user *model.User, params ItemParams, image *multipart.FileHeader) (*model.Item, error)
		// Update applies params to item. A nil image keeps the stored image path.
		Update(item *model.Item, params ItemParams, image *multipart.FileHeader) error
		// Delete removes the item, its comments and, best effort, its image file.
		Delete(item *model.Item) error
		// Comment inserts a new comment authored by user on item.
		Comment(user *model.User, item *model.Item, params CommentParams) (*model.Comment, error)
	}

	// ItemParams are used to create or update an item.
	ItemParams struct {
		Name  string `form:"name"  validate:"required"`
		Price int64  `form:"price" validate:"required,gt=0"`
		Body  string `form:"body"  validate:"required"`
	}

	// CommentParams are used to comment an item.
	CommentParams struct {
		Body string `form:"body" validate:"required"`
	}

	itemService struct {
		db      database.Client
		uploads *uploads.Store
		policy  *bluemonday.Policy
	}
)

// NewItem returns a new ItemService.
func NewItem(db database.Client, uploads *uploads.Store) ItemService {
	return &itemService{
		db:      db,
		uploads: uploads,
		policy:  bluemonday.UGCPolicy(),
	}
}

func (s *itemService) Create(user *model.User, params ItemParams, image *multipart.FileHeader) (*model.Item, error) {
	stored, err := s.store(image)
	if err != nil {
		return nil, err
	}

	item := &model.Item{
		UserID:    user.ID,
		Name:      params.Name,
		Price:     params.Price,
		Body:      s.policy.Sanitize(params.Body),
		ImagePath: path.Join(imagePrefix, stored),
	}

	if err := s.db.Save(item); err != nil {
		if rerr := s.uploads.Remove(stored); rerr != nil {
			logrus.WithError(rerr).Warn("could not remove image of unsaved item")
		}
		if s.db.IsAlreadyExists(err) {
			return nil, ErrNameTaken
		}
		return nil, errors.Wrap(err, "could not persist item")
	}

	return item, nil
}

func (s *itemService) Update(item *model.Item, params ItemParams, image *multipart.FileHeader) error {
	item.Name = params.Name
	item.Price = params.Price
	item.Body = s.policy.Sanitize(params.Body)

	if image != nil {
		stored, err := s.store(image)
		if err != nil {
			return err
		}
		item.ImagePath = path.Join(imagePrefix, stored)
	}

	if err := s.db.Save(item); err != nil {
		if s.db.IsAlreadyExists(err) {
			return ErrNameTaken
		}
		return errors.Wrap(err, "could not persist item")
	}
	return nil
}

func (s *itemService) Delete(item *model.Item) error {
	// Comments cannot outlive their item.
	if err := s.db.DeleteCommentsByItemID(item.ID); err != nil {
		return errors.Wrap(err, "could not delete item comments")
	}

	if err := s.db.Delete(item); err != nil {
		return errors.Wrap(err, "could not delete item")
	}

	if item.ImagePath != "" {
		if err := s.uploads.Remove(path.Base(item.ImagePath)); err != nil {
			logrus.WithError(err).Warn("could not remove image of deleted item")
		}
	}
	return nil
}

func (s *itemService) Comment(user *model.User, item *model.Item, params CommentParams) (*model.Comment, error) {
	comment := &model.Comment{
		UserID: user.ID,
		ItemID: item.ID,
		Body:   s.policy.Sanitize(params.Body),
	}

	if err := s.db.Save(comment); err != nil {
		return nil, errors.Wrap(err, "could not persist comment")
	}
	return comment, nil
}

// store writes the uploaded image to the uploads directory and returns the stored filename.
func (s *itemService) store(image *multipart.FileHeader) (string, error) {
	f, err := image.Open()
	if err != nil {
		return "", errors.Wrap(err, "could not open uploaded image")
	}
	defer f.Close()

	stored, err := s.uploads.Save(image.Filename, f)
	if err != nil {
		if err == uploads.ErrUnsupportedType {
			return "", err
		}
		return "", errors.Wrap(err, "could not store uploaded image")
	}
	return stored, nil
}
