package user

import "time"

type User struct {
	ID           string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NameSet reports whether the user has recorded a display name
func (u *User) NameSet() bool {
	return u.FullName != ""
}
