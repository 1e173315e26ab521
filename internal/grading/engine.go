package grading

import (
	"errors"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Strategy decides whether a raw answer is correct for one question type.
// Implementations must not panic on malformed input; they return false instead.
type Strategy interface {
	Check(meta models.Metadata, answer string) bool
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(meta models.Metadata, answer string) bool

func (f StrategyFunc) Check(meta models.Metadata, answer string) bool { return f(meta, answer) }

// Grader routes a question to the strategy registered for its type.
type Grader struct {
	strategies map[models.QuestionType]Strategy
	logger     *slog.Logger
}

type Option func(*Grader)

// WithLogger sets the logger used to report malformed stored metadata.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Grader) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGrader installs the built-in strategies.
func NewGrader(opts ...Option) *Grader {
	g := &Grader{
		strategies: map[models.QuestionType]Strategy{
			models.QuestionMCQ:              StrategyFunc(checkMCQ),
			models.QuestionTrueFalse:        StrategyFunc(checkTrueFalse),
			models.QuestionFill:             StrategyFunc(checkFill),
			models.QuestionErrorSpotting:    StrategyFunc(checkErrorSpotting),
			models.QuestionOutputPrediction: StrategyFunc(checkOutputPrediction),
			models.QuestionCodeWriting:      StrategyFunc(checkCodeWriting),
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

var defaultGrader = NewGrader()

// Validate grades rawAnswer against q with the built-in strategies and no logging.
func Validate(q *models.Question, rawAnswer string) bool {
	return defaultGrader.Validate(q, rawAnswer)
}

// Validate grades rawAnswer against q. It is fail-closed: a missing question, an unknown
// type or metadata that does not decode all grade as incorrect.
func (g *Grader) Validate(q *models.Question, rawAnswer string) bool {
	if q == nil {
		return false
	}

	meta, err := q.DecodeMetadata()
	if err != nil {
		g.logMalformed(q, err)
		return false
	}
	return g.Check(meta, rawAnswer)
}

// Check grades rawAnswer against already decoded metadata.
func (g *Grader) Check(meta models.Metadata, rawAnswer string) bool {
	if meta == nil {
		return false
	}
	s, ok := g.strategies[meta.QuestionType()]
	if !ok {
		return false
	}
	return s.Check(meta, rawAnswer)
}

func (g *Grader) logMalformed(q *models.Question, err error) {
	attrs := []any{
		"question_id", q.ID,
		"question_type", q.Type,
		"error", err,
	}
	var decodeErr *models.DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Field != "" {
		attrs = append(attrs, "field", decodeErr.Field)
	}
	g.logger.Error("Malformed question metadata, grading as incorrect", attrs...)
}
