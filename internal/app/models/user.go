package models

// User is the profile returned by the backend's /users/me endpoint.
// The backend owns all account state; this is a per-session snapshot.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Session pairs the resolved user with the bearer token that proved them.
// Both fields are set together or not at all: a token that cannot be
// resolved to a user is treated as no session.
type Session struct {
	User  *User
	Token string
}

func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin
}
