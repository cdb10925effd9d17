package service

import (
	"fmt"

	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/internal/repository"
	pkglogger "github.com/publora/publora-backend/pkg/logger"
)

// RuleService evaluates approval rules against posts. Matched posts get the
// requires_approval flag and surface on dashboards through the implicit
// single-step path even without a workflow assignment.
type RuleService interface {
	Evaluate(post *domain.Post) (bool, error)
	ApplyToPost(post *domain.Post) error
	CreateRule(ownerID string, rule *domain.ApprovalRule) error
	ListRules(ownerID string) ([]*domain.ApprovalRule, error)
	DeleteRule(ownerID string, ruleID uint64) error
}

type ruleService struct {
	rules repository.RuleRepository
	posts repository.PostRepository
}

// NewRuleService creates a new RuleService
func NewRuleService(rules repository.RuleRepository, posts repository.PostRepository) RuleService {
	return &ruleService{rules: rules, posts: posts}
}

// Evaluate reports whether any active rule of the post's owner matches
func (s *ruleService) Evaluate(post *domain.Post) (bool, error) {
	rules, err := s.rules.FindActiveByOwner(post.OwnerID)
	if err != nil {
		return false, err
	}
	for _, rule := range rules {
		if rule.Condition.Matches(post) {
			pkglogger.GetLogger().Debug().
				Uint64("post_id", post.ID).
				Uint64("rule_id", rule.ID).
				Str("kind", rule.Condition.Kind).
				Msg("approval rule matched")
			return true, nil
		}
	}
	return false, nil
}

// ApplyToPost evaluates rules and persists the requires_approval flag
// when it changed
func (s *ruleService) ApplyToPost(post *domain.Post) error {
	matched, err := s.Evaluate(post)
	if err != nil {
		return err
	}
	if matched == post.RequiresApproval {
		return nil
	}
	post.RequiresApproval = matched
	return s.posts.SetRequiresApproval(post.ID, matched)
}

// CreateRule validates the tagged condition and persists the rule
func (s *ruleService) CreateRule(ownerID string, rule *domain.ApprovalRule) error {
	if err := validateCondition(&rule.Condition); err != nil {
		return err
	}
	rule.OwnerID = ownerID
	rule.IsActive = true
	return s.rules.Create(rule)
}

// ListRules returns the owner's rules, newest first
func (s *ruleService) ListRules(ownerID string) ([]*domain.ApprovalRule, error) {
	return s.rules.ListByOwner(ownerID)
}

// DeleteRule removes a rule after ownership check
func (s *ruleService) DeleteRule(ownerID string, ruleID uint64) error {
	rules, err := s.rules.ListByOwner(ownerID)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if rule.ID == ruleID {
			return s.rules.Delete(ruleID)
		}
	}
	return common.ErrNotFound
}

// validateCondition checks that exactly the variant named by Kind is set
func validateCondition(c *domain.RuleCondition) error {
	switch c.Kind {
	case domain.RuleKindTimeWindow:
		if c.TimeWindow == nil {
			return fmt.Errorf("%w: time_window condition missing", common.ErrInvalidInput)
		}
		if c.TimeWindow.StartHour < 0 || c.TimeWindow.StartHour > 23 ||
			c.TimeWindow.EndHour < 0 || c.TimeWindow.EndHour > 24 {
			return fmt.Errorf("%w: time_window hours out of range", common.ErrInvalidInput)
		}
	case domain.RuleKindMedia:
		if c.Media == nil {
			return fmt.Errorf("%w: media condition missing", common.ErrInvalidInput)
		}
	case domain.RuleKindKeyword:
		if c.Keyword == nil || len(c.Keyword.Keywords) == 0 {
			return fmt.Errorf("%w: keyword condition needs at least one keyword", common.ErrInvalidInput)
		}
	case domain.RuleKindPlatform:
		if c.Platform == nil || len(c.Platform.Platforms) == 0 {
			return fmt.Errorf("%w: platform condition needs at least one platform", common.ErrInvalidInput)
		}
	case domain.RuleKindCustom:
		if c.Custom == nil || c.Custom.Expression == "" {
			return fmt.Errorf("%w: custom condition needs an expression", common.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown rule kind %q", common.ErrInvalidInput, c.Kind)
	}
	return nil
}
