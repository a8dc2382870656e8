package models

import "time"

// Timestamps are maintained by GORM on create and save.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// User is an account. Staff users administer the catalog; every user can
// act as customer, vendor and reviewer.
type User struct {
	ID          uint   `gorm:"primaryKey"`
	Username    string `gorm:"size:150;not null;uniqueIndex:idx_users_username"`
	FirstName   string `gorm:"size:150;not null;default:''"`
	LastName    string `gorm:"size:150;not null;default:''"`
	Email       string `gorm:"size:254;not null;default:''"`
	Password    string `gorm:"size:128;not null"` // bcrypt hash, never serialised
	IsStaff     bool   `gorm:"not null"`
	IsActive    bool   `gorm:"not null"`
	IsSuperuser bool   `gorm:"not null"`
	LastLogin   *time.Time
	DateJoined  time.Time `gorm:"not null"`
	Timestamps
}
