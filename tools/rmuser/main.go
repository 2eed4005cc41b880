package main

import (
	"fmt"
	"log"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/echoppe/internal/database"
	"github.com/mdouchement/echoppe/internal/model"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

func main() {
	c := &coral.Command{
		Use:   "rmuser DATABASE EMAIL",
		Short: "Remove a user and their records from the database",
		Args:  coral.ExactArgs(2),
		RunE: func(_ *coral.Command, args []string) error {
			//
			//
			fmt.Println("Opening", args[0])
			db, err := storm.Open(args[0], database.StormCodec)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			// Fetch user
			var user model.User
			err = db.One("Email", args[1], &user)
			if err != nil {
				if err == storm.ErrNotFound {
					fmt.Println("No account for this email")
					return nil
				}
				return errors.Wrap(err, "find user by mail")
			}

			fmt.Println("User found:", user.ID)

			// Deleting comments posted by the user
			err = db.Select(q.Eq("UserID", user.ID)).Delete(&model.Comment{})
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete comments")
			}
			fmt.Println("Comments removed")

			// Deleting user's items and the comments they received
			var items []*model.Item
			err = db.Select(q.Eq("UserID", user.ID)).Find(&items)
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "find items")
			}
			for _, item := range items {
				err = db.Select(q.Eq("ItemID", item.ID)).Delete(&model.Comment{})
				if err != nil && err != storm.ErrNotFound {
					return errors.Wrap(err, "delete item comments")
				}
				if err = db.DeleteStruct(item); err != nil {
					return errors.Wrap(err, "delete item")
				}
			}
			fmt.Println("Items removed")

			// Delete user
			err = db.DeleteStruct(&user)
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete user")
			}
			fmt.Println("User removed")

			return nil
		},
	}

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
