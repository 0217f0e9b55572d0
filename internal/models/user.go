package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	Role         UserRole
	CreatedAt    time.Time
}
