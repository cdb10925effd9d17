package domain

import (
	"strings"
	"time"
)

// Rule condition kinds. The condition is a closed tagged variant: exactly one
// of the pointer fields below is set, matching Kind.
const (
	RuleKindTimeWindow = "time_window"
	RuleKindMedia      = "media"
	RuleKindKeyword    = "keyword"
	RuleKindPlatform   = "platform"
	RuleKindCustom     = "custom"
)

// TimeWindowCondition matches posts scheduled inside an hour-of-day window
type TimeWindowCondition struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// MediaCondition matches posts by attachment presence
type MediaCondition struct {
	RequireAttachment bool `json:"require_attachment"`
}

// KeywordCondition matches posts whose title or content contains any keyword
type KeywordCondition struct {
	Keywords      []string `json:"keywords"`
	CaseSensitive bool     `json:"case_sensitive"`
}

// PlatformCondition matches posts targeting any of the listed platforms
type PlatformCondition struct {
	Platforms []string `json:"platforms"`
}

// CustomCondition an opaque expression evaluated by an external rule engine;
// this engine treats it as always matching so the reviewer sees the post
type CustomCondition struct {
	Expression string `json:"expression"`
}

// RuleCondition tagged variant of the condition kinds
type RuleCondition struct {
	Kind       string               `json:"kind"`
	TimeWindow *TimeWindowCondition `json:"time_window,omitempty"`
	Media      *MediaCondition      `json:"media,omitempty"`
	Keyword    *KeywordCondition    `json:"keyword,omitempty"`
	Platform   *PlatformCondition   `json:"platform,omitempty"`
	Custom     *CustomCondition     `json:"custom,omitempty"`
}

// Matches evaluates the condition against a post
func (c *RuleCondition) Matches(post *Post) bool {
	switch c.Kind {
	case RuleKindTimeWindow:
		if c.TimeWindow == nil || post.ScheduledAt == nil {
			return false
		}
		h := post.ScheduledAt.Hour()
		if c.TimeWindow.StartHour <= c.TimeWindow.EndHour {
			return h >= c.TimeWindow.StartHour && h < c.TimeWindow.EndHour
		}
		// window wraps midnight
		return h >= c.TimeWindow.StartHour || h < c.TimeWindow.EndHour
	case RuleKindMedia:
		if c.Media == nil {
			return false
		}
		return c.Media.RequireAttachment == (len(post.MediaKeys) > 0)
	case RuleKindKeyword:
		if c.Keyword == nil {
			return false
		}
		title, content := post.Title, post.Content
		if !c.Keyword.CaseSensitive {
			title = strings.ToLower(title)
			content = strings.ToLower(content)
		}
		for _, kw := range c.Keyword.Keywords {
			if !c.Keyword.CaseSensitive {
				kw = strings.ToLower(kw)
			}
			if kw == "" {
				continue
			}
			if strings.Contains(title, kw) || strings.Contains(content, kw) {
				return true
			}
		}
		return false
	case RuleKindPlatform:
		if c.Platform == nil {
			return false
		}
		for _, want := range c.Platform.Platforms {
			for _, have := range post.Platforms {
				if strings.EqualFold(want, have) {
					return true
				}
			}
		}
		return false
	case RuleKindCustom:
		return c.Custom != nil
	}
	return false
}

// ApprovalRule a heuristic that flags posts for review without an explicit
// workflow; matched posts get requires_approval=true
type ApprovalRule struct {
	ID        uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID   string        `gorm:"column:owner_id;size:64;index" json:"owner_id"`
	Name      string        `gorm:"column:name;size:255" json:"name"`
	Condition RuleCondition `gorm:"column:condition;type:json;serializer:json" json:"condition"`
	IsActive  bool          `gorm:"column:is_active;default:true;index" json:"is_active"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ApprovalRule) TableName() string { return "approval_rules" }
