package database

import (
	"github.com/mdouchement/echoppe/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is a unique constraint error.
		IsAlreadyExists(err error) bool

		UserInteraction
		ItemInteraction
		CommentInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id (UUID).
		FindUser(id string) (*model.User, error)
		// FindUserByMail returns the user for the given email.
		FindUserByMail(email string) (*model.User, error)
		// CountUsers returns the number of registered users.
		CountUsers() (int, error)
	}

	// An ItemInteraction defines all the methods used to interact with an item record(s).
	ItemInteraction interface {
		// FindItem returns the item for the given id (UUID).
		FindItem(id string) (*model.Item, error)
		// FindItems returns all the items, oldest first.
		FindItems() ([]*model.Item, error)
	}

	// A CommentInteraction defines all the methods used to interact with a comment record(s).
	CommentInteraction interface {
		// FindCommentsByItemID returns all the comments of the given item, oldest first.
		FindCommentsByItemID(itemID string) ([]*model.Comment, error)
		// DeleteCommentsByItemID deletes all the comments of the given item.
		DeleteCommentsByItemID(itemID string) error
	}
)
