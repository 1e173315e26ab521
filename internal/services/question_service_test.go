package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(errs ValidationErrors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func TestCreateQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, _ := f.seedCollection(t, "linq")

	valid := CreateQuestionRequest{
		CollectionID:         col.ID,
		Type:                 "true_false",
		Subcategory:          "basics",
		Difficulty:           "Beginner",
		Prompt:               "Is Where lazy?",
		EstimatedTimeMinutes: 1,
		Metadata:             json.RawMessage(`{"CorrectAnswer": true, "explanation": "deferred"}`),
	}

	t.Run("stores canonical metadata", func(t *testing.T) {
		req := valid
		resp, err := f.services.Question().CreateQuestion(ctx, &req)
		require.NoError(t, err)
		assert.NotZero(t, resp.ID)
		assert.Equal(t, models.QuestionTrueFalse, resp.Type)

		stored, err := f.repo.Question().GetByID(ctx, resp.ID)
		require.NoError(t, err)
		meta, err := stored.DecodeMetadata()
		require.NoError(t, err)
		tf := meta.(*models.TrueFalseMetadata)
		require.NotNil(t, tf.CorrectAnswer)
		assert.True(t, *tf.CorrectAnswer)
		assert.Contains(t, string(stored.Metadata), `"correctAnswer":true`)
	})

	tests := []struct {
		name    string
		mutate  func(r *CreateQuestionRequest)
		fields  []string
		wantErr error
	}{
		{
			name:   "unknown type",
			mutate: func(r *CreateQuestionRequest) { r.Type = "essay" },
			fields: []string{"type"},
		},
		{
			name:   "malformed metadata",
			mutate: func(r *CreateQuestionRequest) { r.Metadata = json.RawMessage(`{"correctAnswer": "yes"}`) },
			fields: []string{"metadata.correctAnswer"},
		},
		{
			name:   "missing correct answer",
			mutate: func(r *CreateQuestionRequest) { r.Metadata = json.RawMessage(`{}`) },
			fields: []string{"metadata.correctAnswer"},
		},
		{
			name:    "unknown collection",
			mutate:  func(r *CreateQuestionRequest) { r.CollectionID = 999 },
			wantErr: ErrCollectionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := f.services.Question().CreateQuestion(ctx, &req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.fields, fieldsOf(verrs))
		})
	}
}

func TestListQuestions_PaginatesAndAttachesPreviousAnswer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, questions := f.seedCollection(t, "linq", mcqMetadata(), outputMetadata("2"), outputMetadata("3"))

	_, err := f.services.Submission().SubmitAnswer(ctx, "u1", &SubmitAnswerRequest{QuestionID: questions[0].ID, Answer: `["A"]`, TimeSpentSeconds: 3})
	require.NoError(t, err)

	page, err := f.services.Question().ListQuestions(ctx, "u1", col.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)

	first := page.Items[0]
	assert.Equal(t, questions[0].ID, first.QuestionID)
	require.NotNil(t, first.PreviousAnswer)
	assert.Equal(t, `["A"]`, first.PreviousAnswer.Answer)
	assert.False(t, first.PreviousAnswer.IsCorrect)
	assert.Nil(t, first.CorrectAnswer, "browsing never discloses the correct answer")
	assert.Nil(t, first.UserAnswer)
	require.Len(t, first.Content.Options, 2)
	assert.Equal(t, "basics", first.Subcategory)
	assert.Nil(t, page.Items[1].PreviousAnswer)

	anonymous, err := f.services.Question().ListQuestions(ctx, "", col.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, anonymous.Items, 1)
	assert.Equal(t, questions[2].ID, anonymous.Items[0].QuestionID)

	defaults, err := f.services.Question().ListQuestions(ctx, "", col.ID, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, maxPageSize, defaults.PageSize)

	_, err = f.services.Question().ListQuestions(ctx, "", 999, 1, 20)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestGetPreviewQuestions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, questions := f.seedCollection(t, "linq", mcqMetadata(), outputMetadata("2"), outputMetadata("3"))

	items, err := f.services.Question().GetPreviewQuestions(ctx, col.ID)
	require.NoError(t, err)
	require.Len(t, items, previewQuestionCount)
	assert.Equal(t, questions[0].ID, items[0].QuestionID)
	for _, item := range items {
		assert.Nil(t, item.CorrectAnswer)
		assert.Nil(t, item.PreviousAnswer)
	}
}
