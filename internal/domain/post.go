package domain

import "time"

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)

// Post an outgoing social-media post
type Post struct {
	ID               uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID          string     `gorm:"column:owner_id;size:64;index" json:"owner_id"`
	AuthorID         string     `gorm:"column:author_id;size:64;index" json:"author_id"`
	Title            string     `gorm:"column:title;size:255" json:"title"`
	Content          string     `gorm:"column:content;type:mediumtext" json:"content"`
	MediaKeys        []string   `gorm:"column:media_keys;type:json;serializer:json" json:"media_keys,omitempty"`
	Platforms        []string   `gorm:"column:platforms;type:json;serializer:json" json:"platforms,omitempty"`
	Status           string     `gorm:"column:status;size:32;default:draft;index" json:"status"`
	ScheduledAt      *time.Time `gorm:"column:scheduled_at;index" json:"scheduled_at,omitempty"`
	RequiresApproval bool       `gorm:"column:requires_approval;default:false;index" json:"requires_approval"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// Snapshot captures the content-affecting fields for the revision log
func (p *Post) Snapshot() map[string]interface{} {
	snap := map[string]interface{}{
		"title":   p.Title,
		"content": p.Content,
	}
	if len(p.MediaKeys) > 0 {
		snap["media_keys"] = p.MediaKeys
	}
	if len(p.Platforms) > 0 {
		snap["platforms"] = p.Platforms
	}
	if p.ScheduledAt != nil {
		snap["scheduled_at"] = p.ScheduledAt.Format(time.RFC3339)
	}
	return snap
}

// CreatePostRequest payload for creating a post
type CreatePostRequest struct {
	Title       string     `json:"title" binding:"required"`
	Content     string     `json:"content" binding:"required"`
	MediaKeys   []string   `json:"media_keys"`
	Platforms   []string   `json:"platforms"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// UpdatePostRequest payload for editing a post
type UpdatePostRequest struct {
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	MediaKeys   []string   `json:"media_keys"`
	Platforms   []string   `json:"platforms"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	EditReason  string     `json:"edit_reason"`
}
