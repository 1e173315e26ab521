package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmitAnswer_CorrectMCQUpdatesProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, questions := f.seedCollection(t, "linq", mcqMetadata(), outputMetadata("2"), outputMetadata("3"))

	resp, err := f.services.Submission().SubmitAnswer(ctx, "u1", &SubmitAnswerRequest{
		QuestionID:       questions[0].ID,
		Answer:           `["B"]`,
		TimeSpentSeconds: 12,
	})
	require.NoError(t, err)

	assert.True(t, resp.IsCorrect)
	assert.True(t, resp.Persisted)
	require.NotNil(t, resp.AttemptNumber)
	assert.Equal(t, 1, *resp.AttemptNumber)

	require.NotNil(t, resp.Progress)
	assert.Equal(t, 3, resp.Progress.TotalQuestions)
	assert.Equal(t, 1, resp.Progress.AnsweredQuestions)
	assert.Equal(t, 1, resp.Progress.CorrectAnswers)
	assert.Equal(t, 100.0, resp.Progress.SuccessRate)
	assert.Equal(t, 33.33, resp.Progress.CompletionRate)
	assert.NotNil(t, resp.Progress.LastAnsweredAt)

	stored, err := f.repo.Progress().Get(ctx, "u1", col.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AnsweredQuestions)
	assert.Equal(t, 1, stored.CorrectAnswers)

	submitted := f.publisher.EventsOfType(events.EventAnswerSubmitted)
	require.Len(t, submitted, 1)
	assert.Equal(t, "u1", submitted[0].PartitionKey)
	assert.Len(t, f.publisher.EventsOfType(events.EventProgressUpdated), 1)
}

func TestSubmitAnswer_AnonymousIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, questions := f.seedCollection(t, "linq", mcqMetadata())

	resp, err := f.services.Submission().SubmitAnswer(ctx, "", &SubmitAnswerRequest{
		QuestionID:       questions[0].ID,
		Answer:           `["A"]`,
		TimeSpentSeconds: 5,
	})
	require.NoError(t, err)
	assert.False(t, resp.IsCorrect)
	assert.False(t, resp.Persisted)
	assert.Nil(t, resp.AttemptNumber)
	assert.Nil(t, resp.Progress)

	rows, err := f.repo.Progress().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.repo.Progress().Get(ctx, "", col.ID)
	assert.True(t, repositories.IsNotFoundError(err))
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestSubmitAnswer_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, questions := f.seedCollection(t, "linq", mcqMetadata())

	tests := []struct {
		name    string
		req     *SubmitAnswerRequest
		field   string
		wantErr error
	}{
		{
			name:  "zero time spent",
			req:   &SubmitAnswerRequest{QuestionID: questions[0].ID, Answer: `["B"]`, TimeSpentSeconds: 0},
			field: "time_spent_seconds",
		},
		{
			name:  "empty answer",
			req:   &SubmitAnswerRequest{QuestionID: questions[0].ID, Answer: "", TimeSpentSeconds: 3},
			field: "answer",
		},
		{
			name:    "unknown question",
			req:     &SubmitAnswerRequest{QuestionID: 999, Answer: "x", TimeSpentSeconds: 3},
			wantErr: ErrQuestionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Submission().SubmitAnswer(ctx, "u1", tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestSubmitAnswer_RetakeCountsLatestAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, questions := f.seedCollection(t, "linq", mcqMetadata(), outputMetadata("2"))

	for i, answer := range []string{`["A"]`, `["B"]`, `["A"]`} {
		resp, err := f.services.Submission().SubmitAnswer(ctx, "u1", &SubmitAnswerRequest{
			QuestionID:       questions[0].ID,
			Answer:           answer,
			TimeSpentSeconds: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, *resp.AttemptNumber)
		assert.Equal(t, 1, resp.Progress.AnsweredQuestions, "retakes do not add answered questions")
	}

	p, err := f.repo.Progress().Get(ctx, "u1", col.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CorrectAnswers, "the latest attempt was wrong")
	assert.Equal(t, 50.0, p.CompletionRate)

	history, err := f.repo.Answer().GetHistoryByQuestion(ctx, "u1", questions[0].ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestSubmitAnswer_ConcurrentAttemptsAreSequential(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, questions := f.seedCollection(t, "linq", mcqMetadata())

	const workers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		attempts []int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.services.Submission().SubmitAnswer(ctx, "u1", &SubmitAnswerRequest{
				QuestionID:       questions[0].ID,
				Answer:           `["B"]`,
				TimeSpentSeconds: 1,
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			attempts = append(attempts, *resp.AttemptNumber)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(attempts)
	want := make([]int, workers)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, attempts)

	p, err := f.repo.Progress().Get(ctx, "u1", col.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.AnsweredQuestions)
	assert.Equal(t, 1, p.CorrectAnswers)
}

func TestSubmitAnswer_InvalidatesCachedProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, questions := f.seedCollection(t, "linq", mcqMetadata(), outputMetadata("2"))

	_, err := f.services.Submission().SubmitAnswer(ctx, "u1", &SubmitAnswerRequest{QuestionID: questions[0].ID, Answer: `["B"]`, TimeSpentSeconds: 2})
	require.NoError(t, err)

	before, err := f.services.Progress().GetUserProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, 1, before[0].AnsweredQuestions)

	_, err = f.services.Submission().SubmitAnswer(ctx, "u1", &SubmitAnswerRequest{QuestionID: questions[1].ID, Answer: "2", TimeSpentSeconds: 2})
	require.NoError(t, err)

	after, err := f.services.Progress().GetUserProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 2, after[0].AnsweredQuestions)
	assert.Equal(t, 100.0, after[0].CompletionRate)
}

func TestSubmitAnswer_RetriesThenReportsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, questions := f.seedCollection(t, "linq", mcqMetadata())

	answers := &MockAnswerRepository{}
	answers.On("GetHistoryByQuestion", mock.Anything, "u1", questions[0].ID).Return([]*models.UserAnswer{}, nil)
	answers.On("Append", mock.Anything, mock.Anything).Return(fmt.Errorf("%w: duplicate attempt", repositories.ErrConflict))

	repo := &answerOverride{Repository: f.repo, answers: answers}
	svc := NewSubmissionService(repo, grading.NewGrader(), f.cache, f.publisher, f.validator, f.logger, 3)

	_, err := svc.SubmitAnswer(ctx, "u1", &SubmitAnswerRequest{QuestionID: questions[0].ID, Answer: `["B"]`, TimeSpentSeconds: 2})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.True(t, IsConflict(err))
	answers.AssertNumberOfCalls(t, "Append", 3)

	_, err = f.repo.Progress().Get(ctx, "u1", col.ID)
	assert.True(t, repositories.IsNotFoundError(err), "failed attempts leave no progress row")
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestSubmitAnswer_RecoversFromOneConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, questions := f.seedCollection(t, "linq", mcqMetadata())

	answers := &MockAnswerRepository{}
	answers.On("GetHistoryByQuestion", mock.Anything, "u1", questions[0].ID).Return([]*models.UserAnswer{}, nil)
	answers.On("Append", mock.Anything, mock.Anything).Return(repositories.ErrConflict).Once()
	answers.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	answers.On("GetHistoryByCollection", mock.Anything, "u1", questions[0].CollectionID).Return([]*models.UserAnswer{
		{UserID: "u1", QuestionID: questions[0].ID, AttemptNumber: 1, IsCorrect: true},
	}, nil)

	repo := &answerOverride{Repository: f.repo, answers: answers}
	svc := NewSubmissionService(repo, grading.NewGrader(), f.cache, f.publisher, f.validator, f.logger, 3)

	resp, err := svc.SubmitAnswer(ctx, "u1", &SubmitAnswerRequest{QuestionID: questions[0].ID, Answer: `["B"]`, TimeSpentSeconds: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Progress.CorrectAnswers)
	answers.AssertNumberOfCalls(t, "Append", 2)
}
