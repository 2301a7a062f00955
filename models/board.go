package models

import "gorm.io/gorm"

// Board is a named collection of pins owned by a user.
type Board struct {
	gorm.Model
	Name    string `gorm:"size:50;not null"`
	OwnerID uint   `gorm:"index;not null"`
	Owner   User
	Pins    []Pin `gorm:"many2many:board_pins;"` // Many-to-Many relationship with Pin
}
