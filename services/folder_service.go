package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tdlabs/dms/models"
)

// FolderService owns the folder tree per user: name uniqueness per owner and
// refusal to delete folders that still hold documents.
type FolderService struct {
	db *gorm.DB
}

// NewFolderService creates a FolderService.
func NewFolderService(db *gorm.DB) *FolderService {
	return &FolderService{db: db}
}

// FolderInfo is a folder with its document count computed at call time.
type FolderInfo struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	DocumentCount int64     `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Create adds an empty folder for the user. A (name, owner) collision returns
// ErrDuplicateName.
func (s *FolderService) Create(name, username string) (*models.Folder, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}

	taken, err := s.nameTaken(name, user.ID, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	folder := &models.Folder{Name: name, OwnerID: user.ID}
	if err := s.db.Create(folder).Error; err != nil {
		return nil, err
	}
	return folder, nil
}

// ListWithCounts returns the caller's folders. Counts come from a live join
// rather than a denormalized column, so they cannot drift from membership.
func (s *FolderService) ListWithCounts(username string) ([]FolderInfo, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}

	var infos []FolderInfo
	err = s.db.Model(&models.Folder{}).
		Select("folders.id, folders.name, folders.created_at, folders.updated_at, COUNT(documents.id) AS document_count").
		Joins("LEFT JOIN documents ON documents.folder_id = folders.id").
		Where("folders.owner_id = ?", user.ID).
		Group("folders.id").
		Order("folders.name").
		Scan(&infos).Error
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Rename changes a folder's name. Renaming to the current name is a no-op,
// not a conflict.
func (s *FolderService) Rename(id uint, newName, username string) (*models.Folder, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}

	folder, err := s.ownedFolder(s.db, id, user.ID)
	if err != nil {
		return nil, err
	}

	if folder.Name != newName {
		taken, err := s.nameTaken(newName, user.ID, folder.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateName
		}
		folder.Name = newName
		folder.UpdatedAt = time.Now()
		if err := s.db.Save(folder).Error; err != nil {
			return nil, err
		}
	}
	return folder, nil
}

// Delete removes an empty folder. A folder holding any document refuses with
// ErrFolderNotEmpty; deletion never cascades into documents.
func (s *FolderService) Delete(id uint, username string) error {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		folder, err := s.ownedFolder(tx, id, user.ID)
		if err != nil {
			return err
		}

		var docs int64
		if err := tx.Model(&models.Document{}).Where("folder_id = ?", folder.ID).Count(&docs).Error; err != nil {
			return err
		}
		if docs > 0 {
			return ErrFolderNotEmpty
		}

		return tx.Delete(&models.Folder{}, folder.ID).Error
	})
}

// ownedFolder loads a folder visible to the owner; anyone else sees ErrNotFound.
func (s *FolderService) ownedFolder(tx *gorm.DB, id, ownerID uint) (*models.Folder, error) {
	var folder models.Folder
	err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &folder, nil
}

func (s *FolderService) nameTaken(name string, ownerID, excludeID uint) (bool, error) {
	var cnt int64
	q := s.db.Model(&models.Folder{}).Where("name = ? AND owner_id = ?", name, ownerID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
