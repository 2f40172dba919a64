package entity

import (
	"time"

	"gorm.io/gorm"
)

// Country represents a nationality code and its printable name
type Country struct {
	ID        uint
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
