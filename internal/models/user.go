package models

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "ADMIN"
	UserRolePresident UserRole = "PRESIDENT"
	UserRoleMember    UserRole = "MEMBER"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRolePresident, UserRoleMember:
		return true
	}
	return false
}

// ManagerRoles are the roles counted as required signers.
var ManagerRoles = []UserRole{UserRoleAdmin, UserRolePresident}

// IsManager reports whether r is ADMIN or PRESIDENT.
func (r UserRole) IsManager() bool {
	return r == UserRoleAdmin || r == UserRolePresident
}

// User is never hard-deleted once referenced; IsActive=false deactivates it.
type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Role         UserRole  `gorm:"type:varchar(20);not null;index" json:"role"`
	CSERole      *string   `gorm:"column:cse_role;type:varchar(255)" json:"cse_role"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
