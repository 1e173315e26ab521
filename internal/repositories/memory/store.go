// Package memory is an in-process implementation of the repositories contract, used for
// local development and tests. Writers are serialized and each transaction works on a
// private copy of the data that replaces the shared copy only on commit.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type progressKey struct {
	userID       string
	collectionID uint
}

type dataset struct {
	collections map[uint]*models.Collection
	questions   map[uint]*models.Question
	answers     []*models.UserAnswer
	progress    map[progressKey]*models.UserProgress

	lastCollectionID uint
	lastQuestionID   uint
	lastAnswerID     uint
	lastProgressID   uint
}

func newDataset() *dataset {
	return &dataset{
		collections: map[uint]*models.Collection{},
		questions:   map[uint]*models.Question{},
		answers:     []*models.UserAnswer{},
		progress:    map[progressKey]*models.UserProgress{},
	}
}

// clone copies the indexes. Records are shared, so writers must replace records rather than
// mutate them.
func (d *dataset) clone() *dataset {
	c := &dataset{
		collections:      make(map[uint]*models.Collection, len(d.collections)),
		questions:        make(map[uint]*models.Question, len(d.questions)),
		answers:          make([]*models.UserAnswer, len(d.answers)),
		progress:         make(map[progressKey]*models.UserProgress, len(d.progress)),
		lastCollectionID: d.lastCollectionID,
		lastQuestionID:   d.lastQuestionID,
		lastAnswerID:     d.lastAnswerID,
		lastProgressID:   d.lastProgressID,
	}
	for k, v := range d.collections {
		c.collections[k] = v
	}
	for k, v := range d.questions {
		c.questions[k] = v
	}
	copy(c.answers, d.answers)
	for k, v := range d.progress {
		c.progress[k] = v
	}
	return c
}

type store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	data    *dataset
	now     func() time.Time
}

func (s *store) snapshot() *dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *store) commit(d *dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = d
}

// Repository implements repositories.Repository in memory. A Repository returned inside
// WithTransaction is bound to that transaction's private data.
type Repository struct {
	store *store
	tx    *dataset
}

var _ repositories.Repository = (*Repository)(nil)

type Option func(*store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *store) { s.now = now }
}

func NewRepository(opts ...Option) *Repository {
	s := &store{data: newDataset(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return &Repository{store: s}
}

func (r *Repository) Collection() repositories.CollectionRepository { return collectionRepo{r} }
func (r *Repository) Question() repositories.QuestionRepository     { return questionRepo{r} }
func (r *Repository) Answer() repositories.AnswerRepository         { return answerRepo{r} }
func (r *Repository) Progress() repositories.ProgressRepository     { return progressRepo{r} }

// WithTransaction runs fn against a private copy of the data and publishes it only when fn
// returns nil. Nested calls join the outer transaction.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.writeMu.Lock()
	defer r.store.writeMu.Unlock()

	tx := r.store.snapshot().clone()
	if err := fn(&Repository{store: r.store, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.commit(tx)
	return nil
}

func (r *Repository) Ping(ctx context.Context) error { return ctx.Err() }
func (r *Repository) Close() error                   { return nil }

func (r *Repository) read(fn func(d *dataset)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	fn(r.store.snapshot())
}

func (r *Repository) write(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tx != nil {
		return fn(r.tx)
	}

	r.store.writeMu.Lock()
	defer r.store.writeMu.Unlock()

	next := r.store.snapshot().clone()
	if err := fn(next); err != nil {
		return err
	}
	r.store.commit(next)
	return nil
}

func (r *Repository) now() time.Time {
	return r.store.now()
}
