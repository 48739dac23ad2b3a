package model

import "time"

// Role is an account privilege level
type Role string

const (
	RoleSuperAdmin         Role = "SUPERADMIN"
	RoleAdmin              Role = "ADMIN"
	RoleProvincialEngineer Role = "PROVINCIAL_ENGINEER"
	RoleDivisionHead       Role = "DIVISION_HEAD"
	RoleSectionChief       Role = "SECTION_CHIEF"
	RoleStaff              Role = "STAFF"
	RoleViewer             Role = "VIEWER"
)

// Roles lists every role from highest to lowest privilege
var Roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleProvincialEngineer,
	RoleDivisionHead,
	RoleSectionChief,
	RoleStaff,
	RoleViewer,
}

// Rank returns the privilege rank of the role, 0 being the highest.
// Unknown roles rank below every known role.
func (r Role) Rank() int {
	for i, role := range Roles {
		if role == r {
			return i
		}
	}
	return len(Roles)
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r.Rank() < len(Roles)
}

// IsHighest reports whether r is the highest privilege level
func (r Role) IsHighest() bool {
	return r == Roles[0]
}

// Sex of an account holder
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

// Valid reports whether s is a known value
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// UserStatus represents account status
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusPending  UserStatus = "PENDING"
)

// Valid reports whether s is a known status
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusPending:
		return true
	}
	return false
}

// CanTransitionTo reports whether an administrator may move an account
// from s to next. Accounts never return to PENDING.
func (s UserStatus) CanTransitionTo(next UserStatus) bool {
	switch s {
	case UserStatusPending:
		return next == UserStatusActive || next == UserStatusInactive
	case UserStatusActive:
		return next == UserStatusInactive
	case UserStatusInactive:
		return next == UserStatusActive
	}
	return false
}

// User represents an account in the system
type User struct {
	UUIDModel
	Name          *string    `gorm:"type:varchar(128)" json:"name"`
	Email         string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"type:varchar(255);not null" json:"-"`
	Role          Role       `gorm:"type:varchar(32);not null;default:'STAFF';index" json:"role"`
	EmployeeID    *string    `gorm:"column:employee_id;type:varchar(64);uniqueIndex" json:"employeeId"`
	Designation   string     `gorm:"type:varchar(128)" json:"designation"`
	Division      string     `gorm:"type:varchar(128);index" json:"division"`
	Sex           *Sex       `gorm:"type:varchar(16)" json:"sex"`
	Status        UserStatus `gorm:"type:varchar(32);not null;default:'PENDING';index" json:"status"`
	EmailVerified *time.Time `json:"emailVerified"`

	// Relations
	Sessions []Session `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"sessions,omitempty"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// DisplayName returns the name if set, falling back to the email
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
