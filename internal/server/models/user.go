package models

// User is an account record; PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
}
