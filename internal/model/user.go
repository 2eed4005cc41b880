package model

// A User represents a database record of a registered customer.
// The Password field holds the encoded PBKDF2 hash, never the clear value.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	Email    string `msgpack:"email" storm:"unique"`
	Password string `msgpack:"password"`
	Name     string `msgpack:"name"`

	// Admin is granted to the first registered user.
	Admin bool `msgpack:"admin"`
}
