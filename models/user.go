package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Email    string `gorm:"size:254;uniqueIndex;not null"`
	Password string `gorm:"not null" json:"-"` // Don't expose password hash
	Name     string `gorm:"size:50;not null"`
	Pins     []Pin  `gorm:"foreignKey:AuthorID"`
}
