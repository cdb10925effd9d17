package service

import (
	"strings"
	"testing"

	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestRecordRevision_SequentialNumbering(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := NewRevisionService(repo, nil)

	for _, n := range []uint{1, 2, 3} {
		repo.On("NextRevisionNumber", uint64(100)).Return(n, nil).Once()
	}
	repo.On("Create", mock.Anything).Return(nil)

	var numbers []uint
	for i := 0; i < 3; i++ {
		rev, err := svc.RecordRevision(100, "author1", map[string]interface{}{"content": "v"}, nil, nil)
		assert.NoError(t, err)
		numbers = append(numbers, rev.RevisionNumber)
	}

	assert.Equal(t, []uint{1, 2, 3}, numbers)
	repo.AssertExpectations(t)
}

func TestRecordRevision_RetriesOnDuplicateNumber(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := NewRevisionService(repo, nil)

	// concurrent writer claimed number 4 between our read and insert
	repo.On("NextRevisionNumber", uint64(100)).Return(uint(4), nil).Once()
	repo.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey).Once()
	repo.On("NextRevisionNumber", uint64(100)).Return(uint(5), nil).Once()
	repo.On("Create", mock.Anything).Return(nil).Once()

	rev, err := svc.RecordRevision(100, "author1", map[string]interface{}{"content": "v"}, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, uint(5), rev.RevisionNumber)
	repo.AssertExpectations(t)
}

func TestRecordRevision_GivesUpAfterSecondConflict(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := NewRevisionService(repo, nil)

	repo.On("NextRevisionNumber", uint64(100)).Return(uint(4), nil)
	repo.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.RecordRevision(100, "author1", map[string]interface{}{"content": "v"}, nil, nil)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestListRevisions_DescendingWithSummaries(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := NewRevisionService(repo, nil)

	reason := "imported"
	repo.On("FindByPostID", uint64(100)).Return([]*domain.PostRevision{
		{ID: 33, PostID: 100, RevisionNumber: 3, Snapshot: map[string]interface{}{"content": "  spaced   out\n\ncontent  "}},
		{ID: 22, PostID: 100, RevisionNumber: 2, Snapshot: map[string]interface{}{}, CreatedReason: &reason},
		{ID: 11, PostID: 100, RevisionNumber: 1, Snapshot: map[string]interface{}{}},
	}, nil)

	items, err := svc.ListRevisions(100)
	assert.NoError(t, err)
	assert.Len(t, items, 3)

	assert.Equal(t, uint(3), items[0].RevisionNumber)
	assert.Equal(t, uint(2), items[1].RevisionNumber)
	assert.Equal(t, uint(1), items[2].RevisionNumber)

	// whitespace-normalized content, then reason, then generic label
	assert.Equal(t, "spaced out content", items[0].Summary)
	assert.Equal(t, "imported", items[1].Summary)
	assert.Equal(t, "Revision #1", items[2].Summary)
}

func TestListRevisions_SummaryTruncation(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := NewRevisionService(repo, nil)

	long := strings.Repeat("word ", 40)
	repo.On("FindByPostID", uint64(100)).Return([]*domain.PostRevision{
		{ID: 1, PostID: 100, RevisionNumber: 1, Snapshot: map[string]interface{}{"content": long}},
	}, nil)

	items, err := svc.ListRevisions(100)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(items[0].Summary, "…"))
	assert.Equal(t, 80+1, len([]rune(items[0].Summary)))
}

func TestRestoreRevision_ReturnsExactSnapshot(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := NewRevisionService(repo, nil)

	snapshot := map[string]interface{}{"title": "launch", "content": "original wording"}
	stored := &domain.PostRevision{ID: 11, PostID: 100, RevisionNumber: 1, Snapshot: snapshot}
	repo.On("FindByID", uint64(11)).Return(stored, nil)

	rev, err := svc.RestoreRevision(100, 11)
	assert.NoError(t, err)
	assert.Equal(t, snapshot, rev.Snapshot)
	// restore is read-only: no Create expectation was set
	repo.AssertExpectations(t)
}

func TestRestoreRevision_WrongPost(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := NewRevisionService(repo, nil)

	stored := &domain.PostRevision{ID: 11, PostID: 200, RevisionNumber: 1}
	repo.On("FindByID", uint64(11)).Return(stored, nil)

	_, err := svc.RestoreRevision(100, 11)
	assert.ErrorIs(t, err, common.ErrRevisionNotFound)
}

func TestRestoreRevision_Missing(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := NewRevisionService(repo, nil)

	repo.On("FindByID", uint64(11)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.RestoreRevision(100, 11)
	assert.ErrorIs(t, err, common.ErrRevisionNotFound)
}
