package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/progress"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type submissionService struct {
	repo       repositories.Repository
	grader     *grading.Grader
	cache      cache.CacheService
	publisher  events.EventPublisher
	validator  *validator.Validator
	logger     *slog.Logger
	svcLogger  *ServiceLogger
	maxRetries int
	now        func() time.Time
}

func NewSubmissionService(
	repo repositories.Repository,
	grader *grading.Grader,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
	maxRetries int,
) SubmissionService {
	if maxRetries < 1 {
		maxRetries = defaultSubmissionMaxRetries
	}
	return &submissionService{
		repo:       repo,
		grader:     grader,
		cache:      cacheService,
		publisher:  publisher,
		validator:  validator,
		logger:     logger,
		svcLogger:  NewServiceLogger(logger, LogConfig{Service: "quiz", Component: "submission"}),
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// recorded is the committed outcome of one submission transaction.
type recorded struct {
	answer   *models.UserAnswer
	progress *models.UserProgress
}

func (s *submissionService) SubmitAnswer(ctx context.Context, userID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	op := s.svcLogger.WithOperation(ctx, "submit_answer", userID)
	resp, err := s.submit(ctx, userID, req)
	op.LogResult(req.QuestionID, "question", err)
	return resp, err
}

func (s *submissionService) submit(ctx context.Context, userID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	isCorrect := s.grader.Validate(question, req.Answer)

	// Anonymous callers are graded but leave no trace.
	if userID == "" {
		return &SubmitAnswerResponse{IsCorrect: isCorrect}, nil
	}

	var rec *recorded
	for attempt := 1; ; attempt++ {
		rec, err = s.record(ctx, userID, question, req, isCorrect)
		if err == nil {
			break
		}
		if !repositories.IsConflictError(err) {
			return nil, fmt.Errorf("failed to record answer: %w", err)
		}
		if attempt >= s.maxRetries {
			return nil, fmt.Errorf("%w: question %d after %d attempts", ErrConcurrencyConflict, question.ID, attempt)
		}
		s.logger.Warn("Submission conflicted with a concurrent one, retrying",
			"user_id", userID,
			"question_id", question.ID,
			"attempt", attempt)
	}

	s.afterCommit(ctx, userID, question, rec)

	attemptNumber := rec.answer.AttemptNumber
	return &SubmitAnswerResponse{
		IsCorrect:     isCorrect,
		Persisted:     true,
		AttemptNumber: &attemptNumber,
		Progress:      toProgressResponse(rec.progress, nil),
	}, nil
}

// record appends the attempt and recomputes the collection progress in one transaction. The
// progress row lock serializes concurrent submissions of the same user to the same collection.
func (s *submissionService) record(ctx context.Context, userID string, question *models.Question, req *SubmitAnswerRequest, isCorrect bool) (*recorded, error) {
	var rec *recorded
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		row, err := tx.Progress().Lock(ctx, userID, question.CollectionID)
		if err != nil {
			return fmt.Errorf("failed to lock progress: %w", err)
		}

		history, err := tx.Answer().GetHistoryByQuestion(ctx, userID, question.ID)
		if err != nil {
			return fmt.Errorf("failed to get answer history: %w", err)
		}

		answer := &models.UserAnswer{
			UserID:           userID,
			QuestionID:       question.ID,
			AttemptNumber:    progress.NextAttemptNumber(history),
			Answer:           req.Answer,
			IsCorrect:        isCorrect,
			TimeSpentSeconds: req.TimeSpentSeconds,
			SubmittedAt:      s.now().UTC(),
		}
		if err := tx.Answer().Append(ctx, answer); err != nil {
			return err
		}

		total, err := tx.Question().CountActiveByCollection(ctx, question.CollectionID)
		if err != nil {
			return fmt.Errorf("failed to count questions: %w", err)
		}
		answers, err := tx.Answer().GetHistoryByCollection(ctx, userID, question.CollectionID)
		if err != nil {
			return fmt.Errorf("failed to get collection answers: %w", err)
		}

		row = progress.Apply(row, userID, question.CollectionID, progress.Recompute(total, answers), &answer.SubmittedAt)
		if err := tx.Progress().Upsert(ctx, row); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}

		rec = &recorded{answer: answer, progress: row}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *submissionService) afterCommit(ctx context.Context, userID string, question *models.Question, rec *recorded) {
	if err := s.cache.Delete(ctx, cache.UserProgressKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate progress cache", "user_id", userID, "error", err)
	}

	publishEvent(ctx, s.publisher, s.logger, events.NewAnswerSubmittedEvent(events.AnswerSubmittedEvent{
		UserID:           userID,
		QuestionID:       question.ID,
		CollectionID:     question.CollectionID,
		AttemptNumber:    rec.answer.AttemptNumber,
		IsCorrect:        rec.answer.IsCorrect,
		TimeSpentSeconds: rec.answer.TimeSpentSeconds,
		SubmittedAt:      rec.answer.SubmittedAt,
	}))
	publishEvent(ctx, s.publisher, s.logger, progressUpdatedEvent(rec.progress))
}

func progressUpdatedEvent(p *models.UserProgress) *events.QuizEvent {
	return events.NewProgressUpdatedEvent(events.ProgressUpdatedEvent{
		UserID:            p.UserID,
		CollectionID:      p.CollectionID,
		TotalQuestions:    p.TotalQuestions,
		AnsweredQuestions: p.AnsweredQuestions,
		CorrectAnswers:    p.CorrectAnswers,
		SuccessRate:       p.SuccessRate,
		CompletionRate:    p.CompletionRate,
	})
}
