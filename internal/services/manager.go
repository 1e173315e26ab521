package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/review"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

const (
	defaultSubmissionMaxRetries = 3
	defaultProgressCacheTTL     = 5 * time.Minute
)

type Options struct {
	SubmissionMaxRetries int
	ProgressCacheTTL     time.Duration
}

func (o Options) withDefaults() Options {
	if o.SubmissionMaxRetries < 1 {
		o.SubmissionMaxRetries = defaultSubmissionMaxRetries
	}
	if o.ProgressCacheTTL <= 0 {
		o.ProgressCacheTTL = defaultProgressCacheTTL
	}
	return o
}

type serviceManager struct {
	repo repositories.Repository

	submission SubmissionService
	session    SessionService
	question   QuestionService
	collection CollectionService
	results    ResultsService
	progress   ProgressService
	export     ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
	opts Options,
) ServiceManager {
	opts = opts.withDefaults()
	if cacheService == nil {
		cacheService = cache.NewMemoryCache()
	}
	if publisher == nil {
		publisher = events.NewMockEventPublisher(logger)
	}

	grader := grading.NewGrader(grading.WithLogger(logger))
	builder := review.NewBuilder(logger)

	return &serviceManager{
		repo:       repo,
		submission: NewSubmissionService(repo, grader, cacheService, publisher, validator, logger, opts.SubmissionMaxRetries),
		session:    NewSessionService(repo.Question(), grader, builder, publisher, validator, logger),
		question:   NewQuestionService(repo, builder, validator, logger),
		collection: NewCollectionService(repo, validator, logger),
		results:    NewResultsService(repo, builder, logger),
		progress:   NewProgressService(repo, cacheService, publisher, logger, opts.ProgressCacheTTL),
		export:     NewExportService(repo, logger),
	}
}

func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Session() SessionService       { return m.session }
func (m *serviceManager) Question() QuestionService     { return m.question }
func (m *serviceManager) Collection() CollectionService { return m.collection }
func (m *serviceManager) Results() ResultsService       { return m.results }
func (m *serviceManager) Progress() ProgressService     { return m.progress }
func (m *serviceManager) Export() ExportService         { return m.export }

func (m *serviceManager) Health(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

// publishEvent is best effort: a failure is logged and never fails the calling operation.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.QuizEvent) {
	if err := publisher.PublishEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish quiz event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage applies the listing defaults and caps the page size.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
