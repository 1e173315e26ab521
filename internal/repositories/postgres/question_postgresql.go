package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return translateError(q.db.WithContext(ctx).Create(question).Error)
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&question).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

func (q QuestionPostgreSQL) ListByCollection(ctx context.Context, collectionID uint, page repositories.Pagination) ([]*models.Question, int64, error) {
	var questions []*models.Question
	var total int64

	query := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("collection_id = ? AND is_active = ?", collectionID, true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := applyPagination(query.Order("id ASC"), page).Find(&questions).Error; err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (q QuestionPostgreSQL) CountActiveByCollection(ctx context.Context, collectionID uint) (int, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("collection_id = ? AND is_active = ?", collectionID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (q QuestionPostgreSQL) CountActiveByCollections(ctx context.Context) (map[uint]int, error) {
	var rows []repositories.CollectionQuestionCount
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("collection_id, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("collection_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.CollectionID] = r.Count
	}
	return counts, nil
}
