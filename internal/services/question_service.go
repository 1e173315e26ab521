package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/progress"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/review"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// previewQuestionCount is how many questions an anonymous visitor may look at.
const previewQuestionCount = 2

type questionService struct {
	repo      repositories.Repository
	builder   *review.Builder
	validator *validator.Validator
	logger    *slog.Logger
	svcLogger *ServiceLogger
}

func NewQuestionService(repo repositories.Repository, builder *review.Builder, validator *validator.Validator, logger *slog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		builder:   builder,
		validator: validator,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "quiz", Component: "question"}),
	}
}

func (s *questionService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*QuestionResponse, error) {
	op := s.svcLogger.WithOperation(ctx, "create_question", "")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult(req.CollectionID, "collection", err)
		return nil, err
	}

	if _, err := s.repo.Collection().GetByID(ctx, req.CollectionID); err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrCollectionNotFound
		} else {
			err = fmt.Errorf("failed to get collection: %w", err)
		}
		op.LogResult(req.CollectionID, "collection", err)
		return nil, err
	}

	question, errs := buildQuestion(s.validator, "", req.CollectionID, req.input())
	if len(errs) > 0 {
		op.LogResult(req.CollectionID, "collection", errs)
		return nil, errs
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		err = fmt.Errorf("failed to create question: %w", err)
		op.LogResult(req.CollectionID, "collection", err)
		return nil, err
	}

	op.LogResult(question.ID, "question", nil)
	return toQuestionResponse(question), nil
}

func (s *questionService) ListQuestions(ctx context.Context, userID string, collectionID uint, page, pageSize int) (*QuestionListResponse, error) {
	if err := s.ensureCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	page, pageSize = normalizePage(page, pageSize)
	questions, total, err := s.repo.Question().ListByCollection(ctx, collectionID, repositories.Pagination{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	var latest map[uint]*models.UserAnswer
	if userID != "" && len(questions) > 0 {
		ids := make([]uint, len(questions))
		for i, q := range questions {
			ids[i] = q.ID
		}
		history, err := s.repo.Answer().GetHistoryByQuestions(ctx, userID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to get answer history: %w", err)
		}
		latest = progress.SelectLatest(history)
	}

	items := make([]QuestionItem, len(questions))
	for i, q := range questions {
		items[i] = s.toItem(q, latest[q.ID])
	}

	return &QuestionListResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (s *questionService) GetPreviewQuestions(ctx context.Context, collectionID uint) ([]QuestionItem, error) {
	if err := s.ensureCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	questions, _, err := s.repo.Question().ListByCollection(ctx, collectionID, repositories.Pagination{Limit: previewQuestionCount})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	items := make([]QuestionItem, len(questions))
	for i, q := range questions {
		items[i] = s.toItem(q, nil)
	}
	return items, nil
}

func (s *questionService) ensureCollection(ctx context.Context, collectionID uint) error {
	if _, err := s.repo.Collection().GetByID(ctx, collectionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCollectionNotFound
		}
		return fmt.Errorf("failed to get collection: %w", err)
	}
	return nil
}

// toItem previews q. The previous answer is attached alongside the preview, so the correct
// answer stays hidden while browsing.
func (s *questionService) toItem(q *models.Question, previous *models.UserAnswer) QuestionItem {
	item := QuestionItem{
		QuestionReview:       s.builder.Preview(q),
		Subcategory:          q.Subcategory,
		Difficulty:           q.Difficulty,
		EstimatedTimeMinutes: q.EstimatedTimeMinutes,
	}
	if previous != nil {
		item.PreviousAnswer = &review.UserAnswerReview{
			Answer:           previous.Answer,
			IsCorrect:        previous.IsCorrect,
			SubmittedAt:      previous.SubmittedAt,
			TimeSpentSeconds: previous.TimeSpentSeconds,
		}
	}
	return item
}

// buildQuestion decodes and checks authored metadata, storing its canonical encoding.
// Field paths in the returned errors are prefixed with prefix.
func buildQuestion(v *validator.Validator, prefix string, collectionID uint, in QuestionInput) (*models.Question, ValidationErrors) {
	var errs ValidationErrors

	qType, _ := models.ParseQuestionType(in.Type)
	meta, err := models.DecodeMetadata(qType, in.Metadata)
	if err != nil {
		field := prefix + "metadata"
		var decodeErr *models.DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Field != "" {
			field += "." + decodeErr.Field
		}
		errs.Add(field, fmt.Sprintf("is not valid %s metadata", qType), "metadata")
		return nil, errs
	}

	for _, e := range v.Question().ValidateMetadata(meta) {
		errs.Add(prefix+e.Field, e.Message, e.Rule)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	blob, err := models.EncodeMetadata(meta)
	if err != nil {
		errs.Add(prefix+"metadata", err.Error(), "metadata")
		return nil, errs
	}

	return &models.Question{
		CollectionID:         collectionID,
		Subcategory:          in.Subcategory,
		Difficulty:           models.Difficulty(in.Difficulty),
		Prompt:               in.Prompt,
		EstimatedTimeMinutes: in.EstimatedTimeMinutes,
		Type:                 qType,
		Metadata:             blob,
		IsActive:             true,
	}, nil
}
