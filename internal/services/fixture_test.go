package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/memory"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo      *memory.Repository
	cache     cache.CacheService
	publisher *events.MockEventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	services  ServiceManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      memory.NewRepository(),
		cache:     cache.NewMemoryCache(),
		publisher: events.NewMockEventPublisher(nil),
		validator: validator.New(),
		logger:    slog.New(slog.DiscardHandler),
	}
	f.services = NewServiceManager(f.repo, f.cache, f.publisher, f.validator, f.logger, Options{})
	return f
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func mcqMetadata() *models.MCQMetadata {
	return &models.MCQMetadata{
		MetadataBase: models.MetadataBase{
			Hints:       []models.Hint{{Hint: "think about deferred execution", OrderIndex: 1}},
			Explanation: strPtr("Where is lazy."),
		},
		Options: []models.MCQOption{
			{ID: "A", Text: "eager", IsCorrect: false},
			{ID: "B", Text: "lazy", IsCorrect: true},
		},
	}
}

func outputMetadata(expected string) *models.OutputPredictionMetadata {
	return &models.OutputPredictionMetadata{Snippet: "fmt.Println(1 + 1)", ExpectedOutput: expected}
}

// seedCollection stores an active collection holding one question per metadata value.
func (f *fixture) seedCollection(t *testing.T, code string, metas ...models.Metadata) (*models.Collection, []*models.Question) {
	t.Helper()
	ctx := context.Background()

	col := &models.Collection{Code: code, Title: "Title " + code, Description: "d", Icon: "i", IsActive: true}
	require.NoError(t, f.repo.Collection().Create(ctx, col))

	questions := make([]*models.Question, 0, len(metas))
	for i, meta := range metas {
		blob, err := models.EncodeMetadata(meta)
		require.NoError(t, err)
		q := &models.Question{
			CollectionID:         col.ID,
			Subcategory:          "basics",
			Difficulty:           models.DifficultyBeginner,
			Prompt:               fmt.Sprintf("%s question %d", code, i+1),
			EstimatedTimeMinutes: 2,
			Type:                 meta.QuestionType(),
			Metadata:             blob,
			IsActive:             true,
		}
		require.NoError(t, f.repo.Question().Create(ctx, q))
		questions = append(questions, q)
	}
	return col, questions
}

// MockAnswerRepository is a mock implementation of AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) Append(ctx context.Context, answer *models.UserAnswer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockAnswerRepository) GetHistoryByQuestion(ctx context.Context, userID string, questionID uint) ([]*models.UserAnswer, error) {
	args := m.Called(ctx, userID, questionID)
	return args.Get(0).([]*models.UserAnswer), args.Error(1)
}

func (m *MockAnswerRepository) GetHistoryByCollection(ctx context.Context, userID string, collectionID uint) ([]*models.UserAnswer, error) {
	args := m.Called(ctx, userID, collectionID)
	return args.Get(0).([]*models.UserAnswer), args.Error(1)
}

func (m *MockAnswerRepository) GetHistoryByQuestions(ctx context.Context, userID string, questionIDs []uint) ([]*models.UserAnswer, error) {
	args := m.Called(ctx, userID, questionIDs)
	return args.Get(0).([]*models.UserAnswer), args.Error(1)
}

// answerOverride routes answer access, inside and outside transactions, to a mock.
type answerOverride struct {
	repositories.Repository
	answers repositories.AnswerRepository
}

func (r *answerOverride) Answer() repositories.AnswerRepository { return r.answers }

func (r *answerOverride) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.Repository.WithTransaction(ctx, func(tx repositories.Repository) error {
		return fn(&answerOverride{Repository: tx, answers: r.answers})
	})
}

func (f *fixture) seedQuestion(t *testing.T, collectionID uint, meta models.Metadata) *models.Question {
	t.Helper()
	blob, err := models.EncodeMetadata(meta)
	require.NoError(t, err)
	q := &models.Question{
		CollectionID:         collectionID,
		Subcategory:          "extra",
		Difficulty:           models.DifficultyIntermediate,
		Prompt:               "added later",
		EstimatedTimeMinutes: 1,
		Type:                 meta.QuestionType(),
		Metadata:             blob,
		IsActive:             true,
	}
	require.NoError(t, f.repo.Question().Create(context.Background(), q))
	return q
}
