package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var progressKey = []clause.Column{{Name: "user_id"}, {Name: "collection_id"}}

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p ProgressPostgreSQL) Get(ctx context.Context, userID string, collectionID uint) (*models.UserProgress, error) {
	var progress models.UserProgress
	if err := p.db.WithContext(ctx).
		Where("user_id = ? AND collection_id = ?", userID, collectionID).
		First(&progress).Error; err != nil {
		return nil, translateError(err)
	}
	return &progress, nil
}

// Lock inserts the row if absent and takes a row lock on it. Concurrent submissions by the
// same user in the same collection queue here until the holder commits, so the attempt
// numbering and the progress recompute that follow read committed state.
func (p ProgressPostgreSQL) Lock(ctx context.Context, userID string, collectionID uint) (*models.UserProgress, error) {
	placeholder := models.UserProgress{UserID: userID, CollectionID: collectionID}
	if err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: progressKey, DoNothing: true}).
		Create(&placeholder).Error; err != nil {
		return nil, translateError(err)
	}

	var progress models.UserProgress
	if err := p.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND collection_id = ?", userID, collectionID).
		First(&progress).Error; err != nil {
		return nil, translateError(err)
	}
	return &progress, nil
}

func (p ProgressPostgreSQL) Upsert(ctx context.Context, progress *models.UserProgress) error {
	if progress.ID != 0 {
		return translateError(p.db.WithContext(ctx).Save(progress).Error)
	}

	return translateError(p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: progressKey,
			DoUpdates: clause.AssignmentColumns([]string{
				"total_questions",
				"answered_questions",
				"correct_answers",
				"success_rate",
				"completion_rate",
				"last_answered_at",
				"updated_at",
			}),
		}).
		Create(progress).Error)
}

func (p ProgressPostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.UserProgress, error) {
	var rows []*models.UserProgress
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("collection_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (p ProgressPostgreSQL) ListUserIDs(ctx context.Context, page repositories.Pagination) ([]string, int64, error) {
	var total int64
	if err := p.db.WithContext(ctx).
		Model(&models.UserProgress{}).
		Distinct("user_id").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []string
	query := p.db.WithContext(ctx).
		Model(&models.UserProgress{}).
		Distinct("user_id").
		Order("user_id ASC")
	if err := applyPagination(query, page).Pluck("user_id", &ids).Error; err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

func (p ProgressPostgreSQL) ListByUsers(ctx context.Context, userIDs []string) ([]*models.UserProgress, error) {
	if len(userIDs) == 0 {
		return []*models.UserProgress{}, nil
	}

	var rows []*models.UserProgress
	if err := p.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id ASC, collection_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (p ProgressPostgreSQL) ListAll(ctx context.Context) ([]*models.UserProgress, error) {
	var rows []*models.UserProgress
	if err := p.db.WithContext(ctx).
		Order("user_id ASC, collection_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
