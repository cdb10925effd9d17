package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scheduledAt(hour int) *time.Time {
	t := time.Date(2026, 8, 31, hour, 30, 0, 0, time.UTC)
	return &t
}

func TestRuleCondition_TimeWindow(t *testing.T) {
	cond := RuleCondition{
		Kind:       RuleKindTimeWindow,
		TimeWindow: &TimeWindowCondition{StartHour: 22, EndHour: 6},
	}

	assert.True(t, cond.Matches(&Post{ScheduledAt: scheduledAt(23)}))
	assert.True(t, cond.Matches(&Post{ScheduledAt: scheduledAt(2)}))
	assert.False(t, cond.Matches(&Post{ScheduledAt: scheduledAt(12)}))
	assert.False(t, cond.Matches(&Post{}), "unscheduled posts never match a time window")
}

func TestRuleCondition_Keyword(t *testing.T) {
	cond := RuleCondition{
		Kind:    RuleKindKeyword,
		Keyword: &KeywordCondition{Keywords: []string{"giveaway", "SALE"}},
	}

	assert.True(t, cond.Matches(&Post{Content: "Big Sale this weekend"}))
	assert.True(t, cond.Matches(&Post{Title: "GIVEAWAY time"}))
	assert.False(t, cond.Matches(&Post{Content: "regular update"}))
}

func TestRuleCondition_Media(t *testing.T) {
	cond := RuleCondition{
		Kind:  RuleKindMedia,
		Media: &MediaCondition{RequireAttachment: true},
	}

	assert.True(t, cond.Matches(&Post{MediaKeys: []string{"a.png"}}))
	assert.False(t, cond.Matches(&Post{}))
}

func TestRuleCondition_Platform(t *testing.T) {
	cond := RuleCondition{
		Kind:     RuleKindPlatform,
		Platform: &PlatformCondition{Platforms: []string{"tiktok"}},
	}

	assert.True(t, cond.Matches(&Post{Platforms: []string{"TikTok", "x"}}))
	assert.False(t, cond.Matches(&Post{Platforms: []string{"x"}}))
}

func TestRuleCondition_UnknownKindNeverMatches(t *testing.T) {
	cond := RuleCondition{Kind: "telepathy"}
	assert.False(t, cond.Matches(&Post{Title: "anything"}))
}

func TestWorkflowStepNavigation(t *testing.T) {
	wf := &ApprovalWorkflow{
		Steps: []ApprovalWorkflowStep{
			{ID: 3, StepOrder: 30},
			{ID: 1, StepOrder: 10},
			{ID: 2, StepOrder: 20},
		},
	}

	assert.Equal(t, uint64(1), wf.FirstStep().ID)
	assert.Equal(t, uint64(2), wf.NextStepAfter(10).ID)
	assert.Equal(t, uint64(3), wf.NextStepAfter(20).ID)
	assert.Nil(t, wf.NextStepAfter(30))
	assert.Nil(t, (&ApprovalWorkflow{}).FirstStep())
}
