package models

import "time"

// Like is at most one per (user, pin); rows are hard-deleted on unlike so the
// unique index never collides with a tombstone.
type Like struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_like_user_pin"`
	PinID     uint `gorm:"not null;uniqueIndex:idx_like_user_pin;index"`
}
