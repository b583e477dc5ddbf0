package model

import "time"

// Creator is the directory entry of a content creator, keyed by a stable id
// with a unique username used for display and lookups.
type Creator struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Username  string    `gorm:"column:username" json:"username"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Creator) TableName() string {
	return "creators"
}

// CreatorRef godoc
type CreatorRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
