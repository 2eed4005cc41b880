package model

// A Comment represents a database record of a user comment on an item.
type Comment struct {
	Base `msgpack:",inline" storm:"inline"`

	UserID string `msgpack:"user_id" storm:"index"`
	ItemID string `msgpack:"item_id" storm:"index"`
	// Body is a sanitized HTML text.
	Body string `msgpack:"body"`
}
