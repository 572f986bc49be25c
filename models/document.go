package models

import "time"

// Document is a user-owned piece of content. FolderID is nil for unfiled
// documents; a document belongs to at most one folder at a time.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	FolderID  *uint     `gorm:"index" json:"folder_id"`
	Starred   bool      `gorm:"not null;default:false" json:"starred"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Owner     User      `gorm:"foreignKey:OwnerID" json:"owner"`
	Files     []File    `gorm:"foreignKey:DocumentID" json:"files"`
}
