package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type CollectionPostgreSQL struct {
	db *gorm.DB
}

func NewCollectionPostgreSQL(db *gorm.DB) repositories.CollectionRepository {
	return &CollectionPostgreSQL{db: db}
}

func (c CollectionPostgreSQL) Create(ctx context.Context, collection *models.Collection) error {
	return translateError(c.db.WithContext(ctx).Omit("Questions").Create(collection).Error)
}

func (c CollectionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := c.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&collection).Error; err != nil {
		return nil, translateError(err)
	}
	return &collection, nil
}

func (c CollectionPostgreSQL) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.Collection{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c CollectionPostgreSQL) List(ctx context.Context) ([]*models.Collection, error) {
	var collections []*models.Collection
	if err := c.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}
