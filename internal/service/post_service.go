package service

import (
	"errors"

	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/internal/repository"
	pkglogger "github.com/publora/publora-backend/pkg/logger"
	"gorm.io/gorm"
)

// PostService business logic for posts. Every content-affecting write goes
// through the revision log; rule evaluation keeps requires_approval current.
type PostService interface {
	ListPosts(ownerID string, page, limit int) ([]*domain.Post, *common.Meta, error)
	GetPost(id uint64) (*domain.Post, error)
	CreatePost(ownerID, authorID string, req *domain.CreatePostRequest) (*domain.Post, error)
	UpdatePost(id uint64, actorID string, req *domain.UpdatePostRequest) (*domain.Post, error)
	DeletePost(id uint64, actorID string) error
	RestoreToRevision(postID, revisionID uint64, actorID string) (*domain.Post, error)
}

type postService struct {
	repo      repository.PostRepository
	revisions RevisionService
	rules     RuleService
}

// NewPostService creates a new PostService
func NewPostService(repo repository.PostRepository, revisions RevisionService, rules RuleService) PostService {
	return &postService{repo: repo, revisions: revisions, rules: rules}
}

// ListPosts retrieves an owner's posts, paginated
func (s *postService) ListPosts(ownerID string, page, limit int) ([]*domain.Post, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	posts, total, err := s.repo.ListByOwner(ownerID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return posts, meta, nil
}

// GetPost retrieves a single post
func (s *postService) GetPost(id uint64) (*domain.Post, error) {
	post, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// CreatePost persists a new post, records revision 1 and evaluates rules
func (s *postService) CreatePost(ownerID, authorID string, req *domain.CreatePostRequest) (*domain.Post, error) {
	post := &domain.Post{
		OwnerID:     ownerID,
		AuthorID:    authorID,
		Title:       req.Title,
		Content:     req.Content,
		MediaKeys:   req.MediaKeys,
		Platforms:   req.Platforms,
		Status:      domain.PostStatusDraft,
		ScheduledAt: req.ScheduledAt,
	}
	if req.ScheduledAt != nil {
		post.Status = domain.PostStatusScheduled
	}

	if err := s.repo.Create(post); err != nil {
		return nil, err
	}

	s.recordRevision(post, authorID, "created")
	s.applyRules(post)
	return post, nil
}

// UpdatePost applies a partial edit, records a revision and re-evaluates rules
func (s *postService) UpdatePost(id uint64, actorID string, req *domain.UpdatePostRequest) (*domain.Post, error) {
	post, err := s.GetPost(id)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != actorID && post.AuthorID != actorID {
		return nil, common.ErrForbidden
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.MediaKeys != nil {
		post.MediaKeys = req.MediaKeys
	}
	if req.Platforms != nil {
		post.Platforms = req.Platforms
	}
	if req.ScheduledAt != nil {
		post.ScheduledAt = req.ScheduledAt
		if post.Status == domain.PostStatusDraft {
			post.Status = domain.PostStatusScheduled
		}
	}

	if err := s.repo.Update(post); err != nil {
		return nil, err
	}

	reason := req.EditReason
	if reason == "" {
		reason = "edited"
	}
	s.recordRevision(post, actorID, reason)
	s.applyRules(post)
	return post, nil
}

// DeletePost removes a post; its revisions and ledger rows stay
func (s *postService) DeletePost(id uint64, actorID string) error {
	post, err := s.GetPost(id)
	if err != nil {
		return err
	}
	if post.OwnerID != actorID && post.AuthorID != actorID {
		return common.ErrForbidden
	}
	return s.repo.Delete(id)
}

// RestoreToRevision applies an old snapshot to the live post and records the
// restore as a new revision, keeping the history a total order
func (s *postService) RestoreToRevision(postID, revisionID uint64, actorID string) (*domain.Post, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != actorID && post.AuthorID != actorID {
		return nil, common.ErrForbidden
	}

	revision, err := s.revisions.RestoreRevision(postID, revisionID)
	if err != nil {
		return nil, err
	}

	applySnapshot(post, revision.Snapshot)
	if err := s.repo.Update(post); err != nil {
		return nil, err
	}

	reason := "restored from revision"
	if _, err := s.revisions.RecordRevision(postID, actorID, post.Snapshot(), nil, &reason); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Uint64("post_id", postID).
			Uint64("revision_id", revisionID).
			Msg("restore revision record failed")
	}
	return post, nil
}

func applySnapshot(post *domain.Post, snapshot map[string]interface{}) {
	if v, ok := snapshot["title"].(string); ok {
		post.Title = v
	}
	if v, ok := snapshot["content"].(string); ok {
		post.Content = v
	}
	if v, ok := snapshot["media_keys"].([]interface{}); ok {
		keys := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				keys = append(keys, str)
			}
		}
		post.MediaKeys = keys
	}
}

func (s *postService) recordRevision(post *domain.Post, actorID, reason string) {
	if s.revisions == nil {
		return
	}
	if _, err := s.revisions.RecordRevision(post.ID, actorID, post.Snapshot(), nil, &reason); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Uint64("post_id", post.ID).
			Msg("revision record failed")
	}
}

func (s *postService) applyRules(post *domain.Post) {
	if s.rules == nil {
		return
	}
	if err := s.rules.ApplyToPost(post); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Uint64("post_id", post.ID).
			Msg("approval rule evaluation failed")
	}
}
