package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type   string    `gorm:"size:50;not null"`
	Title  string    `gorm:"size:255;not null"`
	Body   string    `gorm:"type:text"`
	Data   *string   `gorm:"type:text"`
	IsRead bool      `gorm:"default:false"`

	CreatedAt time.Time
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
