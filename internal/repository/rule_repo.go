package repository

import (
	"github.com/publora/publora-backend/internal/domain"
	"gorm.io/gorm"
)

// RuleRepository approval rule data access
type RuleRepository interface {
	Create(rule *domain.ApprovalRule) error
	FindActiveByOwner(ownerID string) ([]*domain.ApprovalRule, error)
	ListByOwner(ownerID string) ([]*domain.ApprovalRule, error)
	Update(rule *domain.ApprovalRule) error
	Delete(id uint64) error
}

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(rule *domain.ApprovalRule) error {
	return r.db.Create(rule).Error
}

func (r *ruleRepository) FindActiveByOwner(ownerID string) ([]*domain.ApprovalRule, error) {
	var rules []*domain.ApprovalRule
	err := r.db.Where("owner_id = ? AND is_active = ?", ownerID, true).Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) ListByOwner(ownerID string) ([]*domain.ApprovalRule, error) {
	var rules []*domain.ApprovalRule
	err := r.db.Where("owner_id = ?", ownerID).Order("id DESC").Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) Update(rule *domain.ApprovalRule) error {
	return r.db.Save(rule).Error
}

func (r *ruleRepository) Delete(id uint64) error {
	return r.db.Delete(&domain.ApprovalRule{}, id).Error
}
