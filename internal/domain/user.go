package domain

import "time"

type UserRole string

const (
	RoleGuest UserRole = "guest"
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"size:20;not null;default:'guest'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Actor is the already-authenticated caller of a service operation.
// Authorization middleware resolves it before any business logic runs.
type Actor struct {
	ID   int64
	Role UserRole
}

func (a Actor) IsStaff() bool { return a.Role == RoleStaff || a.Role == RoleAdmin }
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
