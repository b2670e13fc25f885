package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// StatusInactive marks a disabled account.
	StatusInactive = 0
	// StatusActive is the default status of a new account.
	StatusActive = 1
)

// User represents an account holder.
type User struct {
	ID           string    `json:"id" gorm:"type:char(36);primaryKey"`
	FirstName    string    `json:"fname" gorm:"size:255;not null"`
	LastName     string    `json:"lname" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Token        *string   `json:"-" gorm:"type:text"`                         // Last issued session token, informational only
	Status       int       `json:"status" gorm:"not null"`
	Role         string    `json:"role,omitempty" gorm:"size:50"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserUpdate is a partial set of user fields. Nil fields are left unchanged.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
	Token        *string
	Status       *int
	Role         *string
}

// IsEmpty reports whether the update carries no field at all.
func (u UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.PasswordHash == nil && u.Token == nil && u.Status == nil && u.Role == nil
}

// Apply copies the set fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Token != nil {
		token := *u.Token
		user.Token = &token
	}
	if u.Status != nil {
		user.Status = *u.Status
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
}
