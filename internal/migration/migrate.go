package migration

import (
	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/pkg/logger"
	"gorm.io/gorm"
)

// Run applies the schema for all application tables
func Run(db *gorm.DB) error {
	logger.GetLogger().Info().Msg("running migrations")

	return db.AutoMigrate(
		&domain.Post{},
		&domain.ApprovalWorkflow{},
		&domain.ApprovalWorkflowStep{},
		&domain.PostApprovalAssignment{},
		&domain.ApprovalHistoryEntry{},
		&domain.PostRevision{},
		&domain.ApprovalRule{},
		&domain.Notification{},
	)
}
