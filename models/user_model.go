package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	FullName string    `gorm:"size:255;not null"`
	Email    string    `gorm:"size:255;unique;not null"`
	Password string    `gorm:"size:255;not null"`
	Phone    *string   `gorm:"size:30"`
	Role     string    `gorm:"size:20;not null;default:'student'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
