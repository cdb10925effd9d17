package repository

import (
	"github.com/publora/publora-backend/internal/domain"
	"gorm.io/gorm"
)

// PostRepository post data access
type PostRepository interface {
	Create(post *domain.Post) error
	FindByID(id uint64) (*domain.Post, error)
	FindByIDs(ids []uint64) ([]*domain.Post, error)
	ListByOwner(ownerID string, page, limit int) ([]*domain.Post, int64, error)
	Update(post *domain.Post) error
	Delete(id uint64) error
	SetRequiresApproval(id uint64, requires bool) error
	FindAwaitingImplicitReview() ([]*domain.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *domain.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) FindByID(id uint64) (*domain.Post, error) {
	var post domain.Post
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindByIDs(ids []uint64) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []*domain.Post
	err := r.db.Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByOwner(ownerID string, page, limit int) ([]*domain.Post, int64, error) {
	var posts []*domain.Post
	var total int64

	query := r.db.Model(&domain.Post{}).Where("owner_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) Update(post *domain.Post) error {
	return r.db.Save(post).Error
}

func (r *postRepository) Delete(id uint64) error {
	return r.db.Delete(&domain.Post{}, id).Error
}

func (r *postRepository) SetRequiresApproval(id uint64, requires bool) error {
	return r.db.Model(&domain.Post{}).
		Where("id = ?", id).
		Update("requires_approval", requires).Error
}

// FindAwaitingImplicitReview returns unpublished posts flagged for approval
// that never entered the workflow engine (no assignment row exists)
func (r *postRepository) FindAwaitingImplicitReview() ([]*domain.Post, error) {
	var posts []*domain.Post
	err := r.db.Where("requires_approval = ? AND status != ?", true, domain.PostStatusPublished).
		Where("id NOT IN (?)", r.db.Model(&domain.PostApprovalAssignment{}).Select("post_id")).
		Order("updated_at DESC").
		Find(&posts).Error
	return posts, err
}
