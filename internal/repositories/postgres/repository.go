package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db         *gorm.DB
	collection repositories.CollectionRepository
	question   repositories.QuestionRepository
	answer     repositories.AnswerRepository
	progress   repositories.ProgressRepository
}

// NewRepository binds every aggregate repository to db. The gorm session should be opened
// with TranslateError enabled so constraint violations surface as repositories.ErrConflict.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:         db,
		collection: NewCollectionPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		answer:     NewAnswerPostgreSQL(db),
		progress:   NewProgressPostgreSQL(db),
	}
}

func (r *Repository) Collection() repositories.CollectionRepository { return r.collection }
func (r *Repository) Question() repositories.QuestionRepository     { return r.question }
func (r *Repository) Answer() repositories.AnswerRepository         { return r.answer }
func (r *Repository) Progress() repositories.ProgressRepository     { return r.progress }

func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// translateError maps gorm errors onto the repository error contract.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", repositories.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repositories.ErrConflict, err)
	}
	return err
}

func applyPagination(db *gorm.DB, page repositories.Pagination) *gorm.DB {
	if page.Limit > 0 {
		db = db.Limit(page.Limit)
	}
	if page.Offset > 0 {
		db = db.Offset(page.Offset)
	}
	return db
}
