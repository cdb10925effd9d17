package domain

import "time"

// PostRevision an immutable, numbered snapshot of a post's content.
// revision_number is strictly increasing per post with no reuse; the unique
// index on (post_id, revision_number) is what makes concurrent writers safe.
type PostRevision struct {
	ID             uint64                 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID         uint64                 `gorm:"column:post_id;index;uniqueIndex:uq_revision_post_number" json:"post_id"`
	RevisionNumber uint                   `gorm:"column:revision_number;uniqueIndex:uq_revision_post_number" json:"revision_number"`
	AuthorID       string                 `gorm:"column:author_id;size:64" json:"author_id"`
	Snapshot       map[string]interface{} `gorm:"column:snapshot;type:json;serializer:json" json:"snapshot"`
	Diff           *string                `gorm:"column:diff;type:mediumtext" json:"diff,omitempty"`
	CreatedReason  *string                `gorm:"column:created_reason;size:255" json:"created_reason,omitempty"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PostRevision) TableName() string { return "post_revisions" }

// RevisionListItem a revision plus its derived display summary.
// Summary is computed on read and never persisted.
type RevisionListItem struct {
	PostRevision
	Summary string `json:"summary"`
}
