package repositories

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested record does not exist or is inactive.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint. Submission
	// transactions that fail with it may be retried.
	ErrConflict = errors.New("record conflict")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// ===== SHARED FILTER STRUCTS =====

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type CollectionQuestionCount struct {
	CollectionID uint `json:"collection_id"`
	Count        int  `json:"count"`
}

// Repository groups the aggregate repositories. Transactional work goes through
// WithTransaction; the Repository passed to fn is bound to the transaction.
type Repository interface {
	Collection() CollectionRepository
	Question() QuestionRepository
	Answer() AnswerRepository
	Progress() ProgressRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}
