package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/progress"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type progressService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	svcLogger *ServiceLogger
	ttl       time.Duration
}

func NewProgressService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	ttl time.Duration,
) ProgressService {
	return &progressService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "quiz", Component: "progress"}),
		ttl:       ttl,
	}
}

// GetUserProgress returns the caller's stored progress rows. Results are cached per user and
// invalidated whenever one of the user's rows is written.
func (s *progressService) GetUserProgress(ctx context.Context, userID string) ([]ProgressResponse, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	key := cache.UserProgressKey(userID)
	var cached []ProgressResponse
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Progress cache read failed", "user_id", userID, "error", err)
	}

	rows, err := s.repo.Progress().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	collections, err := s.collectionsByID(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProgressResponse, len(rows))
	for i, p := range rows {
		out[i] = *toProgressResponse(p, collections[p.CollectionID])
	}

	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		s.logger.Warn("Progress cache write failed", "user_id", userID, "error", err)
	}
	return out, nil
}

func (s *progressService) ListUserProgressGrouped(ctx context.Context, page, pageSize int) (*UserProgressGroupListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	userIDs, total, err := s.repo.Progress().ListUserIDs(ctx, repositories.Pagination{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	rows, err := s.repo.Progress().ListByUsers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	collections, err := s.collectionsByID(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string][]*models.UserProgress, len(userIDs))
	for _, p := range rows {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	items := make([]UserProgressGroup, 0, len(userIDs))
	for _, id := range userIDs {
		group := UserProgressGroup{UserID: id, Collections: []ProgressResponse{}}
		for _, p := range byUser[id] {
			group.Collections = append(group.Collections, *toProgressResponse(p, collections[p.CollectionID]))
			group.TotalAnswered += p.AnsweredQuestions
			group.TotalCorrect += p.CorrectAnswers
		}
		group.OverallSuccessRate = progress.Rate(group.TotalCorrect, group.TotalAnswered)
		items = append(items, group)
	}

	return &UserProgressGroupListResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// RecomputeProgress rebuilds one progress row from the answer history, picking up changes to
// the collection's active question set.
func (s *progressService) RecomputeProgress(ctx context.Context, userID string, collectionID uint) (*ProgressResponse, error) {
	op := s.svcLogger.WithOperation(ctx, "recompute_progress", userID)
	resp, err := s.recompute(ctx, userID, collectionID)
	op.LogResult(collectionID, "collection", err)
	return resp, err
}

func (s *progressService) recompute(ctx context.Context, userID string, collectionID uint) (*ProgressResponse, error) {
	if userID == "" {
		var errs ValidationErrors
		errs.Add("user_id", "is required", "required")
		return nil, errs
	}

	collection, err := s.repo.Collection().GetByID(ctx, collectionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	var row *models.UserProgress
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		locked, err := tx.Progress().Lock(ctx, userID, collectionID)
		if err != nil {
			return fmt.Errorf("failed to lock progress: %w", err)
		}
		total, err := tx.Question().CountActiveByCollection(ctx, collectionID)
		if err != nil {
			return fmt.Errorf("failed to count questions: %w", err)
		}
		answers, err := tx.Answer().GetHistoryByCollection(ctx, userID, collectionID)
		if err != nil {
			return fmt.Errorf("failed to get collection answers: %w", err)
		}

		row = progress.Apply(locked, userID, collectionID, progress.Recompute(total, answers), progress.LastSubmittedAt(answers))
		return tx.Progress().Upsert(ctx, row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recompute progress: %w", err)
	}

	if err := s.cache.Delete(ctx, cache.UserProgressKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate progress cache", "user_id", userID, "error", err)
	}
	publishEvent(ctx, s.publisher, s.logger, progressUpdatedEvent(row))

	return toProgressResponse(row, collection), nil
}

func (s *progressService) collectionsByID(ctx context.Context) (map[uint]*models.Collection, error) {
	collections, err := s.repo.Collection().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	out := make(map[uint]*models.Collection, len(collections))
	for _, c := range collections {
		out[c.ID] = c
	}
	return out, nil
}
