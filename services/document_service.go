package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tdlabs/dms/models"
)

// recentWindow bounds ListRecent to documents created within the trailing 30 days.
const recentWindow = 30 * 24 * time.Hour

// DocumentInput carries the mutable document fields. A nil FolderID means the
// document is (or becomes) unfiled.
type DocumentInput struct {
	Title    string
	Content  string
	FolderID *uint
	Starred  bool
}

// DocumentService owns document lifecycle: folder placement, starring and
// attachment reconciliation. Attachments are all-or-nothing per create/update.
type DocumentService struct {
	db    *gorm.DB
	files *FileService
}

// NewDocumentService creates a DocumentService backed by the given file store.
func NewDocumentService(db *gorm.DB, files *FileService) *DocumentService {
	return &DocumentService{db: db, files: files}
}

// Create persists a document and then its attachments. A folder id must
// resolve to a folder of the same owner. Any file failure rolls the whole
// creation back, including bytes already written for this call.
func (s *DocumentService) Create(username string, in DocumentInput, uploads []Upload) (*models.Document, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}

	// Admit everything up front so a late reject cannot strand earlier writes.
	for _, up := range uploads {
		if err := s.files.Admit(up); err != nil {
			return nil, err
		}
	}

	var doc *models.Document
	var written []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.FolderID != nil {
			if err := s.checkFolderOwned(tx, *in.FolderID, user.ID); err != nil {
				return err
			}
		}

		doc = &models.Document{
			Title:    in.Title,
			Content:  in.Content,
			OwnerID:  user.ID,
			FolderID: in.FolderID,
			Starred:  in.Starred,
		}
		if err := tx.Create(doc).Error; err != nil {
			return err
		}

		for _, up := range uploads {
			id := doc.ID
			file, err := s.files.save(tx, up, user.ID, &id, nil)
			if err != nil {
				return err
			}
			written = append(written, file.Path)
		}
		return nil
	})
	if err != nil {
		s.files.discard(written...)
		return nil, err
	}

	return s.Get(doc.ID)
}

// Update rewrites a document's fields, folder placement and file set in one
// transaction. Attached files missing from keepFileIDs are deleted outright;
// every upload is admitted and attached. Owner-only.
func (s *DocumentService) Update(id uint, username string, in DocumentInput, keepFileIDs []uint, uploads []Upload) (*models.Document, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}

	for _, up := range uploads {
		if err := s.files.Admit(up); err != nil {
			return nil, err
		}
	}

	keep := make(map[uint]struct{}, len(keepFileIDs))
	for _, fid := range keepFileIDs {
		keep[fid] = struct{}{}
	}

	var written, dropped []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		doc, err := s.loadDocument(tx, id)
		if err != nil {
			return err
		}
		if doc.OwnerID != user.ID {
			return ErrForbidden
		}

		if in.FolderID != nil {
			if err := s.checkFolderOwned(tx, *in.FolderID, user.ID); err != nil {
				return err
			}
		}

		// An omitted folder id unfiles the document; the single UPDATE keeps
		// old- and new-folder membership consistent for concurrent readers.
		updates := map[string]interface{}{
			"title":     in.Title,
			"content":   in.Content,
			"folder_id": in.FolderID,
			"starred":   in.Starred,
		}
		if err := tx.Model(&models.Document{}).Where("id = ?", doc.ID).Updates(updates).Error; err != nil {
			return err
		}

		var attached []models.File
		if err := tx.Where("document_id = ?", doc.ID).Find(&attached).Error; err != nil {
			return err
		}
		for _, f := range attached {
			if _, ok := keep[f.ID]; ok {
				continue
			}
			if err := tx.Delete(&models.File{}, f.ID).Error; err != nil {
				return err
			}
			dropped = append(dropped, f.Path)
		}

		for _, up := range uploads {
			docID := doc.ID
			file, err := s.files.save(tx, up, user.ID, &docID, nil)
			if err != nil {
				return err
			}
			written = append(written, file.Path)
		}
		return nil
	})
	if err != nil {
		s.files.discard(written...)
		return nil, err
	}
	// Bytes of dropped attachments go only after the transaction held.
	s.files.discard(dropped...)

	return s.Get(id)
}

// Delete removes a document, every attached file's bytes and metadata, and its
// folder membership. Owner-only.
func (s *DocumentService) Delete(id uint, username string) error {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return err
	}

	var dropped []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		doc, err := s.loadDocument(tx, id)
		if err != nil {
			return err
		}
		if doc.OwnerID != user.ID {
			return ErrForbidden
		}

		var attached []models.File
		if err := tx.Where("document_id = ?", doc.ID).Find(&attached).Error; err != nil {
			return err
		}
		for _, f := range attached {
			dropped = append(dropped, f.Path)
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.File{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, doc.ID).Error
	})
	if err != nil {
		return err
	}
	s.files.discard(dropped...)
	return nil
}

// Get returns a document with its full file set. Visible to any authenticated
// caller; only mutation is owner-gated.
func (s *DocumentService) Get(id uint) (*models.Document, error) {
	var doc models.Document
	err := s.db.Preload("Files").Preload("Owner").First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListAll returns the caller's documents, newest first.
func (s *DocumentService) ListAll(username string) ([]models.Document, error) {
	return s.list(username, func(q *gorm.DB) *gorm.DB { return q })
}

// ListByFolder returns the caller's documents filed in the given folder. The
// folder must belong to the caller.
func (s *DocumentService) ListByFolder(username string, folderID uint) ([]models.Document, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}
	if err := s.checkFolderOwned(s.db, folderID, user.ID); err != nil {
		return nil, err
	}

	var docs []models.Document
	err = s.db.Preload("Files").
		Where("owner_id = ? AND folder_id = ?", user.ID, folderID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// ListStarred returns the caller's starred documents.
func (s *DocumentService) ListStarred(username string) ([]models.Document, error) {
	return s.list(username, func(q *gorm.DB) *gorm.DB {
		return q.Where("starred = ?", true)
	})
}

// ListRecent returns the caller's documents created within the trailing 30 days.
func (s *DocumentService) ListRecent(username string) ([]models.Document, error) {
	cutoff := time.Now().Add(-recentWindow)
	return s.list(username, func(q *gorm.DB) *gorm.DB {
		return q.Where("created_at > ?", cutoff)
	})
}

func (s *DocumentService) list(username string, scope func(*gorm.DB) *gorm.DB) ([]models.Document, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}
	var docs []models.Document
	q := s.db.Preload("Files").Where("owner_id = ?", user.ID).Order("created_at DESC")
	err = scope(q).Find(&docs).Error
	return docs, err
}

func (s *DocumentService) loadDocument(tx *gorm.DB, id uint) (*models.Document, error) {
	var doc models.Document
	if err := tx.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// checkFolderOwned fails with ErrNotFound when the folder is absent or belongs
// to someone else: a document can never land in another user's folder.
func (s *DocumentService) checkFolderOwned(tx *gorm.DB, folderID, ownerID uint) error {
	var cnt int64
	err := tx.Model(&models.Folder{}).Where("id = ? AND owner_id = ?", folderID, ownerID).Count(&cnt).Error
	if err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}
