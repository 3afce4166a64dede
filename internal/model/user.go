package model

import "time"

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:150;not null"`
	Password  string `gorm:"size:255;not null" json:"-"`
	Email     string `gorm:"size:254" json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
