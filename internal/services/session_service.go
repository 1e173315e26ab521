package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/progress"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/review"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type sessionService struct {
	questions QuestionReader
	grader    *grading.Grader
	builder   *review.Builder
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	svcLogger *ServiceLogger
	now       func() time.Time
}

// NewSessionService builds a session grader. It only ever reads questions, so a session can
// never create answers or progress.
func NewSessionService(
	questions QuestionReader,
	grader *grading.Grader,
	builder *review.Builder,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		questions: questions,
		grader:    grader,
		builder:   builder,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "quiz", Component: "session"}),
		now:       time.Now,
	}
}

func (s *sessionService) CompleteSession(ctx context.Context, req *CompleteSessionRequest) (*CompleteSessionResponse, error) {
	op := s.svcLogger.WithOperation(ctx, "complete_session", "")
	resp, err := s.complete(ctx, req)
	op.LogResult(0, "session", err)
	return resp, err
}

func (s *sessionService) complete(ctx context.Context, req *CompleteSessionRequest) (*CompleteSessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	submittedAt := s.now().UTC()
	items := make([]review.QuestionReview, 0, len(req.Answers))
	correct := 0

	for _, a := range req.Answers {
		question, err := s.questions.GetByID(ctx, a.QuestionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				// Unknown questions are skipped but still count as asked.
				s.logger.Warn("Skipping unknown question in session",
					"session_id", req.SessionID,
					"question_id", a.QuestionID)
				continue
			}
			return nil, fmt.Errorf("failed to get question %d: %w", a.QuestionID, err)
		}

		isCorrect := s.grader.Validate(question, a.Answer)
		if isCorrect {
			correct++
		}

		items = append(items, s.builder.Build(question, &models.UserAnswer{
			QuestionID:       question.ID,
			Answer:           a.Answer,
			IsCorrect:        isCorrect,
			TimeSpentSeconds: a.TimeSpentSeconds,
			SubmittedAt:      submittedAt,
		}))
	}

	resp := &CompleteSessionResponse{
		SessionID:       req.SessionID,
		TotalQuestions:  len(req.Answers),
		CorrectAnswers:  correct,
		ScorePercentage: progress.Rate(correct, len(req.Answers)),
		ReviewItems:     items,
	}

	publishEvent(ctx, s.publisher, s.logger, events.NewSessionCompletedEvent(events.SessionCompletedEvent{
		SessionID:       resp.SessionID,
		TotalQuestions:  resp.TotalQuestions,
		CorrectAnswers:  resp.CorrectAnswers,
		ScorePercentage: resp.ScorePercentage,
	}))

	return resp, nil
}
