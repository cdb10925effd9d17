package repository

import (
	"github.com/publora/publora-backend/internal/domain"
	"gorm.io/gorm"
)

// RevisionRepository post revision data access.
// Rows are append-only; restore reads old snapshots, never rewrites them.
type RevisionRepository interface {
	Create(revision *domain.PostRevision) error
	FindByPostID(postID uint64) ([]*domain.PostRevision, error)
	FindByID(id uint64) (*domain.PostRevision, error)
	NextRevisionNumber(postID uint64) (uint, error)
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

// Create inserts the revision. The unique index on
// (post_id, revision_number) surfaces gorm.ErrDuplicatedKey when a
// concurrent writer claimed the same number; callers retry with a fresh read.
func (r *revisionRepository) Create(revision *domain.PostRevision) error {
	return r.db.Create(revision).Error
}

func (r *revisionRepository) FindByPostID(postID uint64) ([]*domain.PostRevision, error) {
	var revisions []*domain.PostRevision
	err := r.db.Where("post_id = ?", postID).
		Order("revision_number DESC").
		Find(&revisions).Error
	return revisions, err
}

func (r *revisionRepository) FindByID(id uint64) (*domain.PostRevision, error) {
	var revision domain.PostRevision
	err := r.db.Where("id = ?", id).First(&revision).Error
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) NextRevisionNumber(postID uint64) (uint, error) {
	var maxNumber *uint
	err := r.db.Model(&domain.PostRevision{}).
		Where("post_id = ?", postID).
		Select("MAX(revision_number)").
		Scan(&maxNumber).Error
	if err != nil {
		return 1, err
	}
	if maxNumber == nil {
		return 1, nil
	}
	return *maxNumber + 1, nil
}
