package progress

import (
	"math"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Stats are the counters of one (user, collection) pair.
type Stats struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

func (s Stats) SuccessRate() float64    { return Rate(s.Correct, s.Answered) }
func (s Stats) CompletionRate() float64 { return Rate(s.Answered, s.Total) }

// IsLater reports whether a supersedes b as the latest attempt: later submission time wins,
// and on equal times the higher attempt number wins.
func IsLater(a, b *models.UserAnswer) bool {
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.After(b.SubmittedAt)
	}
	return a.AttemptNumber > b.AttemptNumber
}

// SelectLatest returns the latest attempt per question.
func SelectLatest(answers []*models.UserAnswer) map[uint]*models.UserAnswer {
	latest := make(map[uint]*models.UserAnswer, len(answers))
	for _, a := range answers {
		if a == nil {
			continue
		}
		if cur, ok := latest[a.QuestionID]; !ok || IsLater(a, cur) {
			latest[a.QuestionID] = a
		}
	}
	return latest
}

// Latest returns the latest attempt in history, or nil when history is empty.
func Latest(history []*models.UserAnswer) *models.UserAnswer {
	var latest *models.UserAnswer
	for _, a := range history {
		if a != nil && (latest == nil || IsLater(a, latest)) {
			latest = a
		}
	}
	return latest
}

// Recompute derives the counters from the active question count and the user's answers to
// active questions of the collection. The result depends only on its inputs.
func Recompute(totalActive int, answers []*models.UserAnswer) Stats {
	latest := SelectLatest(answers)

	s := Stats{Total: totalActive, Answered: len(latest)}
	for _, a := range latest {
		if a.IsCorrect {
			s.Correct++
		}
	}
	return s
}

// NextAttemptNumber is one more than the highest attempt number in history, or 1.
func NextAttemptNumber(history []*models.UserAnswer) int {
	highest := 0
	for _, a := range history {
		if a != nil && a.AttemptNumber > highest {
			highest = a.AttemptNumber
		}
	}
	return highest + 1
}

// Rate returns num/den*100 rounded to two decimals, or 0 when den is 0.
func Rate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return Round2(float64(num) * 100 / float64(den))
}

// Round2 rounds to two decimals, resolving exact midpoints to the even hundredth.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Apply writes stats into p. A nil p starts a new row for the pair.
func Apply(p *models.UserProgress, userID string, collectionID uint, s Stats, answeredAt *time.Time) *models.UserProgress {
	if p == nil {
		p = &models.UserProgress{UserID: userID, CollectionID: collectionID}
	}
	p.TotalQuestions = s.Total
	p.AnsweredQuestions = s.Answered
	p.CorrectAnswers = s.Correct
	p.SuccessRate = s.SuccessRate()
	p.CompletionRate = s.CompletionRate()
	if answeredAt != nil {
		at := *answeredAt
		p.LastAnsweredAt = &at
	}
	return p
}

// LastSubmittedAt returns the newest submission time in answers, or nil.
func LastSubmittedAt(answers []*models.UserAnswer) *time.Time {
	if l := Latest(answers); l != nil {
		at := l.SubmittedAt
		return &at
	}
	return nil
}
