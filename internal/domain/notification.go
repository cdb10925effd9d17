package domain

import "time"

// Notification types emitted by the approval engine
const (
	NotificationTypeApprovalRequested = "approval_requested"
	NotificationTypeStepAdvanced      = "approval_step_advanced"
	NotificationTypePostApproved      = "post_approved"
	NotificationTypePostRejected      = "post_rejected"
	NotificationTypeChangesRequested  = "changes_requested"
)

// Notification one enqueued message for one recipient.
// The engine only decides who and when; delivery transport is external.
type Notification struct {
	ID          uint64                 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RecipientID string                 `gorm:"column:recipient_id;size:64;index" json:"recipient_id"`
	Type        string                 `gorm:"column:type;size:48" json:"type"`
	PostID      uint64                 `gorm:"column:post_id;index" json:"post_id"`
	Payload     map[string]interface{} `gorm:"column:payload;type:json;serializer:json" json:"payload,omitempty"`
	Channels    []string               `gorm:"column:channels;type:json;serializer:json" json:"channels,omitempty"`
	IsRead      bool                   `gorm:"column:is_read;default:false;index" json:"is_read"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationListResponse paginated notification list
type NotificationListResponse struct {
	Items       []Notification `json:"items"`
	Total       int64          `json:"total"`
	UnreadCount int64          `json:"unread_count"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
}
