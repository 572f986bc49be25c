package models

import "time"

// File records an uploaded attachment. The stored name is an opaque,
// collision-free identifier; the user-supplied name survives only in metadata
// and as the download filename. A file hangs off at most one parent: a
// document, a post, or neither when uploaded standalone.
type File struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	StoredName   string    `gorm:"size:255;not null" json:"-"`
	ContentType  string    `gorm:"size:128" json:"content_type"`
	Size         int64     `gorm:"not null" json:"size"`
	Path         string    `gorm:"size:1024;not null" json:"-"`
	UploaderID   uint      `gorm:"index;not null" json:"uploader_id"`
	DocumentID   *uint     `gorm:"index" json:"document_id,omitempty"`
	PostID       *uint     `gorm:"index" json:"post_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
