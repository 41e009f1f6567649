package usersgorm

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GORM models (IDs as uint via gorm.Model)

type UserAccount struct {
	gorm.Model
	Username     string         `gorm:"uniqueIndex;size:64;not null"`
	DisplayName  string         `gorm:"size:128"`
	Email        string         `gorm:"size:256"`
	Status       string         `gorm:"index;size:32;default:active"`
	Balance      int64          `gorm:"default:0"` // cents
	PasswordHash string         `gorm:"size:255"`  // bcrypt hash
	Metadata     datatypes.JSON `gorm:"type:json"`
}

type RoleRecord struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"size:256"`
}

type UserRoleRecord struct {
	gorm.Model
	UserID uint `gorm:"index;not null"`
	RoleID uint `gorm:"index;not null"`
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserAccount{}, &RoleRecord{}, &UserRoleRecord{})
}
