package models

import "gorm.io/gorm"

// Pin is a user-authored post with an image, a title and an external link.
type Pin struct {
	gorm.Model
	Title        string `gorm:"size:100;not null"`
	Image        string `gorm:"size:512;not null"` // public URL or path of the stored image
	ImageKey     string `gorm:"size:255"`          // storage key, used to remove the image with the pin
	ExternalLink string `gorm:"size:2048"`
	AuthorID     uint   `gorm:"index;not null"`
	Author       User
	Comments     []Comment
	Likes        []Like
	LikeCount    int64 `gorm:"-"`
}
