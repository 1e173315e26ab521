package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type collectionService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
	svcLogger *ServiceLogger
}

func NewCollectionService(repo repositories.Repository, validator *validator.Validator, logger *slog.Logger) CollectionService {
	return &collectionService{
		repo:      repo,
		validator: validator,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "quiz", Component: "collection"}),
	}
}

// CreateCollection stores a collection with its questions atomically. Either everything is
// created or nothing is.
func (s *collectionService) CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*CreateCollectionResponse, error) {
	op := s.svcLogger.WithOperation(ctx, "create_collection", "")
	resp, err := s.create(ctx, req)
	var id uint
	if resp != nil {
		id = resp.ID
	}
	op.LogResult(id, "collection", err)
	return resp, err
}

func (s *collectionService) create(ctx context.Context, req *CreateCollectionRequest) (*CreateCollectionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var errs ValidationErrors
	questions := make([]*models.Question, 0, len(req.Questions))
	for i, in := range req.Questions {
		q, qErrs := buildQuestion(s.validator, fmt.Sprintf("questions[%d].", i), 0, in)
		if len(qErrs) > 0 {
			errs = append(errs, qErrs...)
			continue
		}
		questions = append(questions, q)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.Collection().ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection code: %w", err)
	}
	if exists {
		return nil, ErrCollectionCodeExists
	}

	collection := &models.Collection{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Collection().Create(ctx, collection); err != nil {
			return err
		}
		for _, q := range questions {
			q.CollectionID = collection.ID
			if err := tx.Question().Create(ctx, q); err != nil {
				return fmt.Errorf("failed to create question: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent create can still win the unique code.
		if repositories.IsConflictError(err) {
			return nil, ErrCollectionCodeExists
		}
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &CreateCollectionResponse{
		ID:             collection.ID,
		Code:           collection.Code,
		Title:          collection.Title,
		QuestionsCount: len(questions),
	}, nil
}

func (s *collectionService) ListCollections(ctx context.Context, userID string) ([]CollectionResponse, error) {
	collections, err := s.repo.Collection().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	counts, err := s.repo.Question().CountActiveByCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	rows := map[uint]*models.UserProgress{}
	if userID != "" {
		progressRows, err := s.repo.Progress().ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user progress: %w", err)
		}
		for _, p := range progressRows {
			rows[p.CollectionID] = p
		}
	}

	out := make([]CollectionResponse, len(collections))
	for i, c := range collections {
		out[i] = CollectionResponse{
			ID:             c.ID,
			Code:           c.Code,
			Title:          c.Title,
			Description:    c.Description,
			Icon:           c.Icon,
			SortOrder:      c.SortOrder,
			QuestionsCount: counts[c.ID],
		}
		if p, ok := rows[c.ID]; ok {
			out[i].Progress = toProgressResponse(p, c)
		}
	}
	return out, nil
}
