// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered identity.
type User struct {
	ID          string
	UserName    string
	Email       string
	Role        Role
	Bio         string
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
	// PasswordHash is only set for operator-created superusers.
	PasswordHash []byte
	CreatedAt    time.Time
}

// EffectiveRole folds the staff/superuser flags into RoleAdmin.
func (u *User) EffectiveRole() Role {
	if u.IsStaff || u.IsSuperuser {
		return RoleAdmin
	}
	return u.Role
}
