package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// CollectionRepository interface for collection operations
type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id uint) (*models.Collection, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// List returns active collections ordered by sort order then id.
	List(ctx context.Context) ([]*models.Collection, error)
}

// QuestionRepository interface for question operations. Reads only return active questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)

	// ListByCollection returns active questions ordered by id and the total active count.
	ListByCollection(ctx context.Context, collectionID uint, page Pagination) ([]*models.Question, int64, error)
	CountActiveByCollection(ctx context.Context, collectionID uint) (int, error)
	CountActiveByCollections(ctx context.Context) (map[uint]int, error)
}
