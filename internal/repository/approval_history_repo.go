package repository

import (
	"github.com/publora/publora-backend/internal/domain"
	"gorm.io/gorm"
)

// ApprovalHistoryRepository append-only decision ledger access.
// There is deliberately no update or delete method.
type ApprovalHistoryRepository interface {
	Create(entry *domain.ApprovalHistoryEntry) error
	ListByPostID(postID uint64) ([]*domain.ApprovalHistoryEntry, error)
}

type approvalHistoryRepository struct {
	db *gorm.DB
}

// NewApprovalHistoryRepository creates a new ApprovalHistoryRepository
func NewApprovalHistoryRepository(db *gorm.DB) ApprovalHistoryRepository {
	return &approvalHistoryRepository{db: db}
}

func (r *approvalHistoryRepository) Create(entry *domain.ApprovalHistoryEntry) error {
	return r.db.Create(entry).Error
}

func (r *approvalHistoryRepository) ListByPostID(postID uint64) ([]*domain.ApprovalHistoryEntry, error) {
	var entries []*domain.ApprovalHistoryEntry
	err := r.db.Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}
