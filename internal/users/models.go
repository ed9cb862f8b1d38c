package users

import (
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is a registered student or administrator. Email and student number
// are unique; deleting a user cascades to the items they reported.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"not null" json:"fullName"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	StudentID    string    `gorm:"uniqueIndex;not null" json:"studentId"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `gorm:"type:varchar(16);not null;default:'student'" json:"role"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }
