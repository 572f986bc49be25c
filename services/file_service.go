package services

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdlabs/dms/models"
	"github.com/tdlabs/dms/utils"
)

// Upload carries one incoming file part: the declared name, type and size plus
// a reader over the raw bytes.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Extensions admitted for storage, matched case-insensitively against the
// declared filename.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
}

// FileService stores uploaded bytes under uuid-based names and keeps their
// metadata in the database. Metadata is only written after the bytes are
// confirmed on disk.
type FileService struct {
	db       *gorm.DB
	dir      string
	maxBytes int64
}

// NewFileService creates a FileService rooted at dir with a per-file size ceiling.
func NewFileService(db *gorm.DB, dir string, maxBytes int64) *FileService {
	return &FileService{db: db, dir: dir, maxBytes: maxBytes}
}

// Admit checks the admission policy: non-empty, allowed extension, within the
// size ceiling — in that order. Nothing is written on rejection.
func (s *FileService) Admit(up Upload) error {
	if up.Size <= 0 {
		return &FileRejectedError{Reason: RejectEmpty, Name: up.Name}
	}
	ext := strings.ToLower(filepath.Ext(up.Name))
	if _, ok := allowedExtensions[ext]; !ok {
		return &FileRejectedError{Reason: RejectDisallowedType, Name: up.Name}
	}
	if up.Size > s.maxBytes {
		return &FileRejectedError{Reason: RejectTooLarge, Name: up.Name}
	}
	return nil
}

// save admits the upload, writes its bytes under a fresh uuid name, then
// records metadata through tx. The stored name never derives from the supplied
// filename, so identically named concurrent uploads cannot collide. On any
// failure the written bytes are removed before returning.
func (s *FileService) save(tx *gorm.DB, up Upload, uploaderID uint, documentID, postID *uint) (*models.File, error) {
	if err := s.Admit(up); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(up.Name))
	path := filepath.Join(s.dir, storedName)

	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	// The declared size passed admission; the limited reader guards against a
	// stream that is longer than declared.
	lr := &io.LimitedReader{R: up.Content, N: s.maxBytes + 1}
	written, err := io.Copy(out, lr)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > s.maxBytes {
		err = &FileRejectedError{Reason: RejectTooLarge, Name: up.Name}
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	file := &models.File{
		OriginalName: filepath.Base(up.Name),
		StoredName:   storedName,
		ContentType:  up.ContentType,
		Size:         written,
		Path:         path,
		UploaderID:   uploaderID,
		DocumentID:   documentID,
		PostID:       postID,
	}
	if err := tx.Create(file).Error; err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return file, nil
}

// SaveStandalone persists a parentless upload for the given user. The file can
// later be attached or swept as an orphan.
func (s *FileService) SaveStandalone(username string, up Upload) (*models.File, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}
	return s.save(s.db, up, user.ID, nil, nil)
}

// Get returns a file's metadata.
func (s *FileService) Get(id uint) (*models.File, error) {
	var file models.File
	if err := s.db.First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// Delete removes a file's metadata and, best-effort, its bytes. Only the
// uploader may delete a file directly.
func (s *FileService) Delete(id uint, username string) error {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return err
	}
	file, err := s.Get(id)
	if err != nil {
		return err
	}
	if file.UploaderID != user.ID {
		return ErrForbidden
	}
	if err := s.db.Delete(&models.File{}, file.ID).Error; err != nil {
		return err
	}
	s.discard(file.Path)
	return nil
}

// discard best-effort removes stored bytes. A missing file is not an error:
// earlier partial failures must not block further cleanup.
func (s *FileService) discard(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			utils.Sugar.Warnf("failed to remove stored file %s: %v", p, err)
		}
	}
}

// SweepOrphans deletes standalone uploads that were never attached to a
// document or post within maxAge. Returns the number of files removed.
func (s *FileService) SweepOrphans(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	var orphans []models.File
	err := s.db.
		Where("document_id IS NULL AND post_id IS NULL AND created_at <= ?", cutoff).
		Limit(100).
		Find(&orphans).Error
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range orphans {
		if err := s.db.Delete(&models.File{}, f.ID).Error; err != nil {
			utils.Sugar.Warnf("orphan sweep: delete row %d failed: %v", f.ID, err)
			continue
		}
		s.discard(f.Path)
		removed++
	}
	return removed, nil
}

// StartOrphanSweeper launches a background loop that periodically sweeps
// orphaned uploads. Best-effort; failures are logged.
func (s *FileService) StartOrphanSweeper(interval, maxAge time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			if _, err := s.SweepOrphans(maxAge); err != nil {
				utils.Sugar.Warnf("orphan sweep failed: %v", err)
			}
		}
	}()
}

// resolveUser maps a verified token subject to its account row.
func resolveUser(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
