package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model
	Text     string `gorm:"size:500;not null"`
	PinID    uint   `gorm:"index;not null"`
	AuthorID uint   `gorm:"index;not null"`
	Author   User
}
