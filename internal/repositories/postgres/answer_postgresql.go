package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a AnswerPostgreSQL) Append(ctx context.Context, answer *models.UserAnswer) error {
	return translateError(a.db.WithContext(ctx).Create(answer).Error)
}

func (a AnswerPostgreSQL) GetHistoryByQuestion(ctx context.Context, userID string, questionID uint) ([]*models.UserAnswer, error) {
	var answers []*models.UserAnswer
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Order("attempt_number ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a AnswerPostgreSQL) GetHistoryByCollection(ctx context.Context, userID string, collectionID uint) ([]*models.UserAnswer, error) {
	var answers []*models.UserAnswer
	if err := a.db.WithContext(ctx).
		Select("user_answers.*").
		Joins("JOIN questions ON questions.id = user_answers.question_id").
		Where("user_answers.user_id = ? AND questions.collection_id = ? AND questions.is_active = ?", userID, collectionID, true).
		Order("user_answers.question_id ASC, user_answers.attempt_number ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a AnswerPostgreSQL) GetHistoryByQuestions(ctx context.Context, userID string, questionIDs []uint) ([]*models.UserAnswer, error) {
	if len(questionIDs) == 0 {
		return []*models.UserAnswer{}, nil
	}

	var answers []*models.UserAnswer
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND question_id IN ?", userID, questionIDs).
		Order("question_id ASC, attempt_number ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}
