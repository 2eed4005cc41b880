package model

// An Item represents a database record of a product listing.
type Item struct {
	Base `msgpack:",inline" storm:"inline"`

	UserID string `msgpack:"user_id" storm:"index"`
	Name   string `msgpack:"name"    storm:"unique"`
	// Price is expressed in whole currency units and is always positive.
	Price int64 `msgpack:"price"`
	// Body is a sanitized HTML description.
	Body      string `msgpack:"body"`
	ImagePath string `msgpack:"image_path"`
}
