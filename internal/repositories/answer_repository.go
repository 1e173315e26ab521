package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// AnswerRepository interface for the append-only attempt log
type AnswerRepository interface {
	// Append inserts a new attempt. A duplicate (user, question, attempt number) yields ErrConflict.
	Append(ctx context.Context, answer *models.UserAnswer) error

	GetHistoryByQuestion(ctx context.Context, userID string, questionID uint) ([]*models.UserAnswer, error)
	// GetHistoryByCollection returns the user's attempts on active questions of the collection.
	GetHistoryByCollection(ctx context.Context, userID string, collectionID uint) ([]*models.UserAnswer, error)
	GetHistoryByQuestions(ctx context.Context, userID string, questionIDs []uint) ([]*models.UserAnswer, error)
}

// ProgressRepository interface for per (user, collection) progress rows
type ProgressRepository interface {
	Get(ctx context.Context, userID string, collectionID uint) (*models.UserProgress, error)

	// Lock serializes writers of the (user, collection) row for the rest of the transaction.
	// It creates an empty row when none exists.
	Lock(ctx context.Context, userID string, collectionID uint) (*models.UserProgress, error)
	Upsert(ctx context.Context, progress *models.UserProgress) error

	ListByUser(ctx context.Context, userID string) ([]*models.UserProgress, error)
	// ListUserIDs returns distinct user ids with progress, ordered, plus the distinct user count.
	ListUserIDs(ctx context.Context, page Pagination) ([]string, int64, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]*models.UserProgress, error)
	ListAll(ctx context.Context) ([]*models.UserProgress, error)
}
