package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tdlabs/dms/models"
)

// recentCommentCount is how many newest comments a post detail embeds.
const recentCommentCount = 5

// PostInput carries the mutable post fields.
type PostInput struct {
	Title   string
	Content string
}

// PostDetail is a post read enriched with its author name, live comment count
// and a preview of the newest comments.
type PostDetail struct {
	Post           models.Post      `json:"post"`
	AuthorName     string           `json:"author_name"`
	CommentCount   int64            `json:"comment_count"`
	RecentComments []models.Comment `json:"recent_comments"`
}

// SearchField selects which columns a post search matches against.
type SearchField string

const (
	SearchTitle   SearchField = "title"
	SearchContent SearchField = "content"
	SearchAll     SearchField = "all"
)

// PostService owns forum post lifecycle, author-only mutation rights and
// attachment reconciliation on update.
type PostService struct {
	db    *gorm.DB
	files *FileService
}

// NewPostService creates a PostService backed by the given file store.
func NewPostService(db *gorm.DB, files *FileService) *PostService {
	return &PostService{db: db, files: files}
}

// Create persists a post and then its attachments; any file failure rolls the
// whole creation back.
func (s *PostService) Create(username string, in PostInput, uploads []Upload) (*PostDetail, error) {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return nil, err
	}

	for _, up := range uploads {
		if err := s.files.Admit(up); err != nil {
			return nil, err
		}
	}

	var post *models.Post
	var written []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		post = &models.Post{
			Title:    in.Title,
			Content:  in.Content,
			AuthorID: user.ID,
		}
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, up := range uploads {
			postID := post.ID
			file, err := s.files.save(tx, up, user.ID, nil, &postID)
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

	return s.detail(post.ID)
}

// Update rewrites a post's fields and reconciles its file set against the
// keep-list plus new uploads, all in one transaction. Author-only.
func (s *PostService) Update(id uint, username string, in PostInput, keepFileIDs []uint, uploads []Upload) (*PostDetail, error) {
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
		post, err := s.loadPost(tx, id)
		if err != nil {
			return err
		}
		if post.AuthorID != user.ID {
			return ErrForbidden
		}

		updates := map[string]interface{}{
			"title":   in.Title,
			"content": in.Content,
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error; err != nil {
			return err
		}

		var attached []models.File
		if err := tx.Where("post_id = ?", post.ID).Find(&attached).Error; err != nil {
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
			postID := post.ID
			file, err := s.files.save(tx, up, user.ID, nil, &postID)
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
	s.files.discard(dropped...)

	return s.detail(id)
}

// Delete cascades: every attached file, every comment, then the post itself,
// in one transaction. Author-only.
func (s *PostService) Delete(id uint, username string) error {
	user, err := resolveUser(s.db, username)
	if err != nil {
		return err
	}

	var dropped []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		post, err := s.loadPost(tx, id)
		if err != nil {
			return err
		}
		if post.AuthorID != user.ID {
			return ErrForbidden
		}

		var attached []models.File
		if err := tx.Where("post_id = ?", post.ID).Find(&attached).Error; err != nil {
			return err
		}
		for _, f := range attached {
			dropped = append(dropped, f.Path)
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.File{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return err
	}
	s.files.discard(dropped...)
	return nil
}

// Get returns a post detail and increments its view count as an observable
// side effect of every call, no matter who reads it.
func (s *PostService) Get(id uint) (*PostDetail, error) {
	res := s.db.Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.detail(id)
}

// List returns posts newest first with author and files preloaded.
func (s *PostService) List(page, pageSize int) ([]models.Post, int64, error) {
	return s.page(s.db.Model(&models.Post{}), page, pageSize)
}

// Search returns posts whose title and/or content contain the keyword as a
// substring, delegated to the store's LIKE matching.
func (s *PostService) Search(keyword string, field SearchField, page, pageSize int) ([]models.Post, int64, error) {
	pattern := "%" + keyword + "%"
	q := s.db.Model(&models.Post{})
	switch field {
	case SearchTitle:
		q = q.Where("title LIKE ?", pattern)
	case SearchContent:
		q = q.Where("content LIKE ?", pattern)
	case SearchAll:
		q = q.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	default:
		return nil, 0, errors.New("invalid search field")
	}
	return s.page(q, page, pageSize)
}

func (s *PostService) page(q *gorm.DB, page, pageSize int) ([]models.Post, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var posts []models.Post
	err := q.Preload("Author").Preload("Files").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	return posts, total, err
}

func (s *PostService) detail(id uint) (*PostDetail, error) {
	var post models.Post
	err := s.db.Preload("Author").Preload("Files").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	var recent []models.Comment
	err = s.db.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at DESC").
		Limit(recentCommentCount).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	return &PostDetail{
		Post:           post,
		AuthorName:     post.Author.Username,
		CommentCount:   count,
		RecentComments: recent,
	}, nil
}

func (s *PostService) loadPost(tx *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}
