package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type collectionRepo struct{ r *Repository }

func (c collectionRepo) Create(ctx context.Context, collection *models.Collection) error {
	return c.r.write(ctx, func(d *dataset) error {
		for _, existing := range d.collections {
			if existing.Code == collection.Code {
				return fmt.Errorf("%w: collection code %q", repositories.ErrConflict, collection.Code)
			}
		}
		d.lastCollectionID++
		now := c.r.now()
		collection.ID = d.lastCollectionID
		collection.CreatedAt, collection.UpdatedAt = now, now

		stored := *collection
		stored.Questions = nil
		d.collections[stored.ID] = &stored
		return nil
	})
}

func (c collectionRepo) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	var out *models.Collection
	c.r.read(func(d *dataset) {
		if col, ok := d.collections[id]; ok && col.IsActive {
			cp := *col
			out = &cp
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: collection %d", repositories.ErrNotFound, id)
	}
	return out, nil
}

func (c collectionRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	exists := false
	c.r.read(func(d *dataset) {
		for _, col := range d.collections {
			if col.Code == code {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

func (c collectionRepo) List(ctx context.Context) ([]*models.Collection, error) {
	out := []*models.Collection{}
	c.r.read(func(d *dataset) {
		for _, col := range d.collections {
			if col.IsActive {
				cp := *col
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type questionRepo struct{ r *Repository }

func (q questionRepo) Create(ctx context.Context, question *models.Question) error {
	return q.r.write(ctx, func(d *dataset) error {
		d.lastQuestionID++
		now := q.r.now()
		question.ID = d.lastQuestionID
		question.CreatedAt, question.UpdatedAt = now, now

		stored := *question
		stored.Metadata = append([]byte(nil), question.Metadata...)
		d.questions[stored.ID] = &stored
		return nil
	})
}

func (q questionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var out *models.Question
	q.r.read(func(d *dataset) {
		if question, ok := d.questions[id]; ok && question.IsActive {
			out = copyQuestion(question)
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: question %d", repositories.ErrNotFound, id)
	}
	return out, nil
}

func (q questionRepo) ListByCollection(ctx context.Context, collectionID uint, page repositories.Pagination) ([]*models.Question, int64, error) {
	var all []*models.Question
	q.r.read(func(d *dataset) {
		all = activeQuestions(d, collectionID)
	})

	total := int64(len(all))
	start := min(max(page.Offset, 0), len(all))
	end := len(all)
	if page.Limit > 0 {
		end = min(start+page.Limit, len(all))
	}
	return all[start:end], total, nil
}

func (q questionRepo) CountActiveByCollection(ctx context.Context, collectionID uint) (int, error) {
	count := 0
	q.r.read(func(d *dataset) {
		count = len(activeQuestions(d, collectionID))
	})
	return count, nil
}

func (q questionRepo) CountActiveByCollections(ctx context.Context) (map[uint]int, error) {
	counts := map[uint]int{}
	q.r.read(func(d *dataset) {
		for _, question := range d.questions {
			if question.IsActive {
				counts[question.CollectionID]++
			}
		}
	})
	return counts, nil
}

func activeQuestions(d *dataset, collectionID uint) []*models.Question {
	out := []*models.Question{}
	for _, question := range d.questions {
		if question.CollectionID == collectionID && question.IsActive {
			out = append(out, copyQuestion(question))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyQuestion(q *models.Question) *models.Question {
	cp := *q
	cp.Metadata = append([]byte(nil), q.Metadata...)
	return &cp
}

type answerRepo struct{ r *Repository }

func (a answerRepo) Append(ctx context.Context, answer *models.UserAnswer) error {
	return a.r.write(ctx, func(d *dataset) error {
		for _, existing := range d.answers {
			if existing.UserID == answer.UserID &&
				existing.QuestionID == answer.QuestionID &&
				existing.AttemptNumber == answer.AttemptNumber {
				return fmt.Errorf("%w: attempt %d of question %d already recorded",
					repositories.ErrConflict, answer.AttemptNumber, answer.QuestionID)
			}
		}
		d.lastAnswerID++
		answer.ID = d.lastAnswerID

		stored := *answer
		d.answers = append(d.answers, &stored)
		return nil
	})
}

func (a answerRepo) GetHistoryByQuestion(ctx context.Context, userID string, questionID uint) ([]*models.UserAnswer, error) {
	return a.filter(func(d *dataset, ans *models.UserAnswer) bool {
		return ans.UserID == userID && ans.QuestionID == questionID
	}), nil
}

func (a answerRepo) GetHistoryByCollection(ctx context.Context, userID string, collectionID uint) ([]*models.UserAnswer, error) {
	return a.filter(func(d *dataset, ans *models.UserAnswer) bool {
		if ans.UserID != userID {
			return false
		}
		q, ok := d.questions[ans.QuestionID]
		return ok && q.IsActive && q.CollectionID == collectionID
	}), nil
}

func (a answerRepo) GetHistoryByQuestions(ctx context.Context, userID string, questionIDs []uint) ([]*models.UserAnswer, error) {
	wanted := make(map[uint]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = struct{}{}
	}
	return a.filter(func(d *dataset, ans *models.UserAnswer) bool {
		_, ok := wanted[ans.QuestionID]
		return ok && ans.UserID == userID
	}), nil
}

func (a answerRepo) filter(keep func(d *dataset, ans *models.UserAnswer) bool) []*models.UserAnswer {
	out := []*models.UserAnswer{}
	a.r.read(func(d *dataset) {
		for _, ans := range d.answers {
			if keep(d, ans) {
				cp := *ans
				out = append(out, &cp)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].QuestionID != out[j].QuestionID {
			return out[i].QuestionID < out[j].QuestionID
		}
		return out[i].AttemptNumber < out[j].AttemptNumber
	})
	return out
}

type progressRepo struct{ r *Repository }

func (p progressRepo) Get(ctx context.Context, userID string, collectionID uint) (*models.UserProgress, error) {
	var out *models.UserProgress
	p.r.read(func(d *dataset) {
		if row, ok := d.progress[progressKey{userID, collectionID}]; ok {
			cp := *row
			out = &cp
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: progress of %s in collection %d", repositories.ErrNotFound, userID, collectionID)
	}
	return out, nil
}

// Lock needs no row lock here since transactions are already serialized; it only creates
// the row when absent, matching the SQL implementation.
func (p progressRepo) Lock(ctx context.Context, userID string, collectionID uint) (*models.UserProgress, error) {
	var out *models.UserProgress
	err := p.r.write(ctx, func(d *dataset) error {
		key := progressKey{userID, collectionID}
		row, ok := d.progress[key]
		if !ok {
			d.lastProgressID++
			now := p.r.now()
			row = &models.UserProgress{
				ID:           d.lastProgressID,
				UserID:       userID,
				CollectionID: collectionID,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			d.progress[key] = row
		}
		cp := *row
		out = &cp
		return nil
	})
	return out, err
}

func (p progressRepo) Upsert(ctx context.Context, progress *models.UserProgress) error {
	return p.r.write(ctx, func(d *dataset) error {
		key := progressKey{progress.UserID, progress.CollectionID}
		now := p.r.now()

		if existing, ok := d.progress[key]; ok {
			progress.ID = existing.ID
			progress.CreatedAt = existing.CreatedAt
		} else {
			d.lastProgressID++
			progress.ID = d.lastProgressID
			progress.CreatedAt = now
		}
		progress.UpdatedAt = now

		stored := *progress
		if progress.LastAnsweredAt != nil {
			at := *progress.LastAnsweredAt
			stored.LastAnsweredAt = &at
		}
		d.progress[key] = &stored
		return nil
	})
}

func (p progressRepo) ListByUser(ctx context.Context, userID string) ([]*models.UserProgress, error) {
	return p.filter(func(row *models.UserProgress) bool { return row.UserID == userID }), nil
}

func (p progressRepo) ListUserIDs(ctx context.Context, page repositories.Pagination) ([]string, int64, error) {
	seen := map[string]struct{}{}
	p.r.read(func(d *dataset) {
		for key := range d.progress {
			seen[key.userID] = struct{}{}
		}
	})

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := int64(len(ids))
	start := min(max(page.Offset, 0), len(ids))
	end := len(ids)
	if page.Limit > 0 {
		end = min(start+page.Limit, len(ids))
	}
	return ids[start:end], total, nil
}

func (p progressRepo) ListByUsers(ctx context.Context, userIDs []string) ([]*models.UserProgress, error) {
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	return p.filter(func(row *models.UserProgress) bool {
		_, ok := wanted[row.UserID]
		return ok
	}), nil
}

func (p progressRepo) ListAll(ctx context.Context) ([]*models.UserProgress, error) {
	return p.filter(func(*models.UserProgress) bool { return true }), nil
}

func (p progressRepo) filter(keep func(row *models.UserProgress) bool) []*models.UserProgress {
	out := []*models.UserProgress{}
	p.r.read(func(d *dataset) {
		for _, row := range d.progress {
			if keep(row) {
				cp := *row
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CollectionID < out[j].CollectionID
	})
	return out
}
