package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *Repository) (*models.Collection, []*models.Question) {
	t.Helper()
	ctx := context.Background()

	col := &models.Collection{Code: "basics", Title: "Basics", IsActive: true}
	require.NoError(t, repo.Collection().Create(ctx, col))

	var questions []*models.Question
	for i := 0; i < 3; i++ {
		q := &models.Question{CollectionID: col.ID, Type: models.QuestionCodeWriting, Metadata: []byte(`{}`), IsActive: true}
		require.NoError(t, repo.Question().Create(ctx, q))
		questions = append(questions, q)
	}
	inactive := &models.Question{CollectionID: col.ID, Type: models.QuestionCodeWriting, Metadata: []byte(`{}`), IsActive: false}
	require.NoError(t, repo.Question().Create(ctx, inactive))

	return col, questions
}

func TestCollectionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	col, _ := seed(t, repo)

	got, err := repo.Collection().GetByID(ctx, col.ID)
	require.NoError(t, err)
	assert.Equal(t, "basics", got.Code)

	exists, err := repo.Collection().ExistsByCode(ctx, "basics")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Collection().Create(ctx, &models.Collection{Code: "basics", IsActive: true})
	assert.True(t, errors.Is(err, repositories.ErrConflict))

	_, err = repo.Collection().GetByID(ctx, 999)
	assert.True(t, repositories.IsNotFoundError(err))

	second := &models.Collection{Code: "advanced", SortOrder: -1, IsActive: true}
	require.NoError(t, repo.Collection().Create(ctx, second))
	list, err := repo.Collection().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "advanced", list[0].Code)
}

func TestQuestionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	col, questions := seed(t, repo)

	count, err := repo.Question().CountActiveByCollection(ctx, col.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	page, total, err := repo.Question().ListByCollection(ctx, col.ID, repositories.Pagination{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, questions[1].ID, page[0].ID)

	empty, _, err := repo.Question().ListByCollection(ctx, col.ID, repositories.Pagination{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = repo.Question().GetByID(ctx, 4)
	assert.True(t, repositories.IsNotFoundError(err), "inactive questions are not returned")

	counts, err := repo.Question().CountActiveByCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{col.ID: 3}, counts)
}

func TestAnswerRepo_AppendConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	_, questions := seed(t, repo)

	a := &models.UserAnswer{UserID: "u1", QuestionID: questions[0].ID, AttemptNumber: 1, SubmittedAt: time.Now()}
	require.NoError(t, repo.Answer().Append(ctx, a))
	assert.NotZero(t, a.ID)

	dup := &models.UserAnswer{UserID: "u1", QuestionID: questions[0].ID, AttemptNumber: 1}
	assert.True(t, repositories.IsConflictError(repo.Answer().Append(ctx, dup)))

	other := &models.UserAnswer{UserID: "u2", QuestionID: questions[0].ID, AttemptNumber: 1}
	assert.NoError(t, repo.Answer().Append(ctx, other))
}

func TestAnswerRepo_History(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	col, questions := seed(t, repo)

	for _, a := range []*models.UserAnswer{
		{UserID: "u1", QuestionID: questions[1].ID, AttemptNumber: 2},
		{UserID: "u1", QuestionID: questions[0].ID, AttemptNumber: 1},
		{UserID: "u1", QuestionID: questions[1].ID, AttemptNumber: 1},
		{UserID: "u1", QuestionID: 4, AttemptNumber: 1},
		{UserID: "u2", QuestionID: questions[0].ID, AttemptNumber: 1},
	} {
		require.NoError(t, repo.Answer().Append(ctx, a))
	}

	byQuestion, err := repo.Answer().GetHistoryByQuestion(ctx, "u1", questions[1].ID)
	require.NoError(t, err)
	require.Len(t, byQuestion, 2)
	assert.Equal(t, 1, byQuestion[0].AttemptNumber)

	byCollection, err := repo.Answer().GetHistoryByCollection(ctx, "u1", col.ID)
	require.NoError(t, err)
	assert.Len(t, byCollection, 3, "answers to inactive questions are excluded")

	byQuestions, err := repo.Answer().GetHistoryByQuestions(ctx, "u1", []uint{questions[0].ID})
	require.NoError(t, err)
	assert.Len(t, byQuestions, 1)
}

func TestWithTransaction_RollbackAndCommit(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	col, questions := seed(t, repo)

	boom := errors.New("boom")
	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		require.NoError(t, tx.Answer().Append(ctx, &models.UserAnswer{UserID: "u1", QuestionID: questions[0].ID, AttemptNumber: 1}))
		_, err := tx.Progress().Lock(ctx, "u1", col.ID)
		require.NoError(t, err)

		inside, err := tx.Answer().GetHistoryByQuestion(ctx, "u1", questions[0].ID)
		require.NoError(t, err)
		assert.Len(t, inside, 1, "writes are visible inside the transaction")

		outside, err := repo.Answer().GetHistoryByQuestion(ctx, "u1", questions[0].ID)
		require.NoError(t, err)
		assert.Empty(t, outside, "writes are invisible outside until commit")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	history, err := repo.Answer().GetHistoryByQuestion(ctx, "u1", questions[0].ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	_, err = repo.Progress().Get(ctx, "u1", col.ID)
	assert.True(t, repositories.IsNotFoundError(err))

	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Answer().Append(ctx, &models.UserAnswer{UserID: "u1", QuestionID: questions[0].ID, AttemptNumber: 1}); err != nil {
			return err
		}
		return tx.Progress().Upsert(ctx, &models.UserProgress{UserID: "u1", CollectionID: col.ID, AnsweredQuestions: 1})
	})
	require.NoError(t, err)

	p, err := repo.Progress().Get(ctx, "u1", col.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.AnsweredQuestions)
}

func TestWithTransaction_Serialized(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	col, _ := seed(t, repo)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
				row, err := tx.Progress().Lock(ctx, "u1", col.ID)
				if err != nil {
					return err
				}
				row.AnsweredQuestions++
				return tx.Progress().Upsert(ctx, row)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := repo.Progress().Get(ctx, "u1", col.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, p.AnsweredQuestions)
}

func TestProgressRepo_Listing(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	for _, p := range []*models.UserProgress{
		{UserID: "bob", CollectionID: 2},
		{UserID: "alice", CollectionID: 2},
		{UserID: "alice", CollectionID: 1},
		{UserID: "carol", CollectionID: 1},
	} {
		require.NoError(t, repo.Progress().Upsert(ctx, p))
	}

	ids, total, err := repo.Progress().ListUserIDs(ctx, repositories.Pagination{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"alice", "bob"}, ids)

	rows, err := repo.Progress().ListByUsers(ctx, ids)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, uint(1), rows[0].CollectionID)

	mine, err := repo.Progress().ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := repo.Progress().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
