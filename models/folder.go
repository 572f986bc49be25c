package models

import "time"

// Folder groups documents per user. The (name, owner) pair is unique and a
// folder holding documents refuses deletion.
type Folder struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:255;not null;uniqueIndex:idx_folder_name_owner" json:"name"`
	OwnerID   uint       `gorm:"not null;uniqueIndex:idx_folder_name_owner;index" json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Owner     User       `gorm:"foreignKey:OwnerID" json:"-"`
	Documents []Document `gorm:"foreignKey:FolderID" json:"-"`
}
