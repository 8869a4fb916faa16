package users

// User is the principal a bearer token authenticates. Many tokens may
// reference the same user; deactivating the user cuts off all of their
// tokens at authentication time without touching the token records.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Active bool   `json:"active"`
}
