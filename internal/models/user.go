package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"type:varchar(36);primarykey" bson:"_id" json:"_id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" bson:"passwordHash" json:"-"`
	Name         string    `gorm:"type:varchar(50);not null" bson:"name" json:"name"`
	Bio          string    `gorm:"type:varchar(500)" bson:"bio" json:"bio"`
	Avatar       string    `gorm:"type:varchar(500)" bson:"avatar" json:"avatar"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
