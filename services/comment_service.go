package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tdlabs/dms/models"
)

// CommentService owns comment lifecycle. A comment references its post
// permanently; only its author may change or remove it.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// ListByPost returns every comment on a post, oldest first.
func (s *CommentService) ListByPost(postID uint) ([]models.Comment, error) {
	if err := s.checkPost(postID); err != nil {
		return nil, err
	}
	var comments []models.Comment
	err := s.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// Create adds a comment by the given user to an existing post.
func (s *CommentService) Create(postID uint, content, username string) (*models.Comment, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}
	if err := s.checkPost(postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: user.ID,
		Content:  content,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return s.load(comment.ID)
}

// Update rewrites a comment's content. Author-only.
func (s *CommentService) Update(id uint, content, username string) (*models.Comment, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}

	comment, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != user.ID {
		return nil, ErrForbidden
	}

	if err := s.db.Model(&models.Comment{}).Where("id = ?", id).Update("content", content).Error; err != nil {
		return nil, err
	}
	return s.load(id)
}

// Delete removes a comment. Author-only.
func (s *CommentService) Delete(id uint, username string) error {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return err
	}

	comment, err := s.load(id)
	if err != nil {
		return err
	}
	if comment.AuthorID != user.ID {
		return ErrForbidden
	}

	return s.db.Delete(&models.Comment{}, id).Error
}

func (s *CommentService) load(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (s *CommentService) checkPost(postID uint) error {
	var cnt int64
	if err := s.db.Model(&models.Post{}).Where("id = ?", postID).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}
