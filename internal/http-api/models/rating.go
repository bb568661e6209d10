package models

import "time"

// Rating is one user's grade for a book; (BookID, UserID) is unique.
type Rating struct {
	BookID    string    `json:"-" gorm:"primaryKey;type:uuid"`
	UserID    string    `json:"userId" gorm:"primaryKey;type:uuid"`
	Grade     int       `json:"grade" gorm:"not null;check:grade >= 0 AND grade <= 5"`
	CreatedAt time.Time `json:"-" gorm:"autoCreateTime"`
}

func (Rating) TableName() string {
	return "ratings"
}
