package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/progress"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/review"
)

type resultsService struct {
	repo    repositories.Repository
	builder *review.Builder
	logger  *slog.Logger
}

func NewResultsService(repo repositories.Repository, builder *review.Builder, logger *slog.Logger) ResultsService {
	return &resultsService{
		repo:    repo,
		builder: builder,
		logger:  logger,
	}
}

func (s *resultsService) GetLatestAnswer(ctx context.Context, userID string, questionID uint) (*LatestAnswerResponse, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	if _, err := s.repo.Question().GetByID(ctx, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	history, err := s.repo.Answer().GetHistoryByQuestion(ctx, userID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer history: %w", err)
	}

	latest := progress.Latest(history)
	if latest == nil {
		return nil, ErrAnswerNotFound
	}

	return &LatestAnswerResponse{
		QuestionID:       latest.QuestionID,
		AttemptNumber:    latest.AttemptNumber,
		Answer:           latest.Answer,
		IsCorrect:        latest.IsCorrect,
		TimeSpentSeconds: latest.TimeSpentSeconds,
		SubmittedAt:      latest.SubmittedAt,
	}, nil
}

// GetCollectionReview reviews the caller's latest attempt on every active question of the
// collection. Unanswered questions are included as previews only when asked for.
func (s *resultsService) GetCollectionReview(ctx context.Context, userID string, collectionID uint, includeUnanswered bool) (*CollectionReviewResponse, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	collection, err := s.repo.Collection().GetByID(ctx, collectionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	questions, _, err := s.repo.Question().ListByCollection(ctx, collectionID, repositories.Pagination{})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	history, err := s.repo.Answer().GetHistoryByCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer history: %w", err)
	}
	latest := progress.SelectLatest(history)

	resp := &CollectionReviewResponse{
		CollectionID:   collection.ID,
		CollectionName: collection.Title,
		TotalQuestions: len(questions),
		CompletedAt:    progress.LastSubmittedAt(history),
		Items:          []review.QuestionReview{},
	}

	for _, a := range history {
		resp.TotalTimeSpentSeconds += a.TimeSpentSeconds
	}

	for _, q := range questions {
		answer, answered := latest[q.ID]
		switch {
		case answered:
			resp.AnsweredQuestions++
			if answer.IsCorrect {
				resp.CorrectAnswers++
			}
			resp.Items = append(resp.Items, s.builder.Build(q, answer))
		case includeUnanswered:
			resp.Items = append(resp.Items, s.builder.Preview(q))
		}
	}

	resp.ScorePercentage = progress.Rate(resp.CorrectAnswers, resp.TotalQuestions)
	return resp, nil
}
