package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/internal/repository"
	"github.com/publora/publora-backend/pkg/elasticsearch"
	pkglogger "github.com/publora/publora-backend/pkg/logger"
	"gorm.io/gorm"
)

const summaryMaxLen = 80

// RevisionService the append-only revision log for post content
type RevisionService interface {
	RecordRevision(postID uint64, authorID string, snapshot map[string]interface{}, diff, reason *string) (*domain.PostRevision, error)
	ListRevisions(postID uint64) ([]*domain.RevisionListItem, error)
	RestoreRevision(postID, revisionID uint64) (*domain.PostRevision, error)
}

type revisionService struct {
	repo   repository.RevisionRepository
	search *elasticsearch.Client
}

// NewRevisionService creates a new RevisionService
func NewRevisionService(repo repository.RevisionRepository, search *elasticsearch.Client) RevisionService {
	return &revisionService{repo: repo, search: search}
}

// RecordRevision appends the next numbered snapshot for a post.
// Numbering is read-max-then-insert guarded by the unique
// (post_id, revision_number) index: a concurrent writer that claims the same
// number forces one retry with a fresh read, so numbers are never lost.
func (s *revisionService) RecordRevision(postID uint64, authorID string, snapshot map[string]interface{}, diff, reason *string) (*domain.PostRevision, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		number, err := s.repo.NextRevisionNumber(postID)
		if err != nil {
			return nil, err
		}

		revision := &domain.PostRevision{
			PostID:         postID,
			RevisionNumber: number,
			AuthorID:       authorID,
			Snapshot:       snapshot,
			Diff:           diff,
			CreatedReason:  reason,
		}

		err = s.repo.Create(revision)
		if err == nil {
			s.indexSnapshot(postID, snapshot)
			return revision, nil
		}
		lastErr = err
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	return nil, lastErr
}

// ListRevisions returns a post's revisions, newest first, each with a
// derived display summary (never persisted)
func (s *revisionService) ListRevisions(postID uint64) ([]*domain.RevisionListItem, error) {
	revisions, err := s.repo.FindByPostID(postID)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.RevisionListItem, len(revisions))
	for i, rev := range revisions {
		items[i] = &domain.RevisionListItem{
			PostRevision: *rev,
			Summary:      summarize(rev),
		}
	}
	return items, nil
}

// RestoreRevision fetches the exact stored snapshot for a revision. It does
// not mutate the post or append a revision; the caller applies the snapshot
// and records a new revision if it wants the restore on the timeline.
func (s *revisionService) RestoreRevision(postID, revisionID uint64) (*domain.PostRevision, error) {
	revision, err := s.repo.FindByID(revisionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrRevisionNotFound
		}
		return nil, err
	}
	if revision.PostID != postID {
		return nil, common.ErrRevisionNotFound
	}
	return revision, nil
}

// summarize derives a short display line: snapshot content first, then the
// created reason, then a generic label
func summarize(rev *domain.PostRevision) string {
	if text := snapshotText(rev.Snapshot); text != "" {
		return truncate(text, summaryMaxLen)
	}
	if rev.CreatedReason != nil && *rev.CreatedReason != "" {
		return truncate(*rev.CreatedReason, summaryMaxLen)
	}
	return fmt.Sprintf("Revision #%d", rev.RevisionNumber)
}

func snapshotText(snapshot map[string]interface{}) string {
	for _, key := range []string{"content", "title"} {
		if v, ok := snapshot[key]; ok {
			if str, ok := v.(string); ok {
				if normalized := strings.Join(strings.Fields(str), " "); normalized != "" {
					return normalized
				}
			}
		}
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// indexSnapshot pushes the latest content into the search index, best-effort
func (s *revisionService) indexSnapshot(postID uint64, snapshot map[string]interface{}) {
	if s.search == nil {
		return
	}
	docID := fmt.Sprintf("%d", postID)
	if err := s.search.IndexDocument(context.Background(), elasticsearch.PostIndex, docID, snapshot); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Uint64("post_id", postID).
			Msg("post content indexing failed")
	}
}
