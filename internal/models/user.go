package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is the stored identity record. PasswordHash never leaves the server.
type User struct {
	ID           int64          `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	FullName     string         `gorm:"type:varchar(255);not null" json:"full_name"`
	StudentID    string         `gorm:"type:varchar(32);uniqueIndex:idx_users_student_id;not null" json:"student_id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	AvatarURL    *string        `gorm:"type:varchar(512)" json:"avatar_url"`
	Bio          *string        `gorm:"type:text" json:"bio"`
	Department   string         `gorm:"type:varchar(128);not null" json:"department"`
	Interests    datatypes.JSON `gorm:"type:jsonb" json:"interests"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// UserProfile is the outward projection of a User. It has no credential field,
// so a select into it can never carry the hash.
type UserProfile struct {
	ID         int64          `gorm:"column:user_id" json:"user_id"`
	FullName   string         `json:"full_name"`
	StudentID  string         `json:"student_id"`
	Email      string         `json:"email"`
	AvatarURL  *string        `json:"avatar_url"`
	Bio        *string        `json:"bio"`
	Department string         `json:"department"`
	Interests  datatypes.JSON `json:"interests"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ProfileUpdate is the mutable subset of a user. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName  *string
	AvatarURL *string
	Bio       *string
	Interests datatypes.JSON
}

// Empty reports whether the update would change nothing.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.AvatarURL == nil && p.Bio == nil && p.Interests == nil
}
