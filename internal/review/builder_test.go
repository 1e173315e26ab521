package review

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func question(t *testing.T, id uint, meta models.Metadata) *models.Question {
	t.Helper()
	blob, err := models.EncodeMetadata(meta)
	require.NoError(t, err)
	return &models.Question{ID: id, Type: meta.QuestionType(), Prompt: "What happens?", Metadata: blob}
}

type disclosureCase struct {
	name    string
	meta    models.Metadata
	secrets []string
}

func disclosureCases() []disclosureCase {
	base := models.MetadataBase{
		CodeBefore:  strPtr("using System;"),
		Hints:       []models.Hint{{Hint: "look closely", OrderIndex: 1}},
		Explanation: strPtr("the explanation"),
	}
	return []disclosureCase{
		{
			name: "mcq",
			meta: &models.MCQMetadata{MetadataBase: base, Options: []models.MCQOption{
				{ID: "A", Text: "first", IsCorrect: false},
				{ID: "B", Text: "second", IsCorrect: true},
			}},
		},
		{
			name:    "true false",
			meta:    &models.TrueFalseMetadata{MetadataBase: base, CorrectAnswer: boolPtr(true)},
			secrets: []string{"true"},
		},
		{
			name:    "fill",
			meta:    &models.FillMetadata{MetadataBase: base, CodeWithBlank: "var x = ___;", CorrectAnswer: "CANONICAL_FILL"},
			secrets: []string{"CANONICAL_FILL"},
		},
		{
			name:    "error spotting",
			meta:    &models.ErrorSpottingMetadata{MetadataBase: base, CodeWithError: "int x = \"a\";", CorrectAnswer: "CANONICAL_FIX"},
			secrets: []string{"CANONICAL_FIX"},
		},
		{
			name:    "output prediction",
			meta:    &models.OutputPredictionMetadata{MetadataBase: base, Snippet: "Console.Write(x);", ExpectedOutput: "EXPECTED_OUTPUT"},
			secrets: []string{"EXPECTED_OUTPUT"},
		},
		{
			name: "code writing",
			meta: &models.CodeWritingMetadata{
				MetadataBase: base,
				Solution:     strPtr("SAMPLE_SOLUTION"),
				Examples:     []string{"Sum(1, 2)"},
				TestCases:    []models.TestCase{{Input: "TEST_INPUT", ExpectedOutput: "TEST_EXPECTED"}},
			},
			secrets: []string{"SAMPLE_SOLUTION", "TEST_INPUT", "TEST_EXPECTED"},
		},
	}
}

func TestPreview_NeverDisclosesCorrectness(t *testing.T) {
	b := NewBuilder(nil)

	for _, tc := range disclosureCases() {
		t.Run(tc.name, func(t *testing.T) {
			r := b.Preview(question(t, 11, tc.meta))

			assert.Nil(t, r.CorrectAnswer)
			assert.Nil(t, r.UserAnswer)

			data, err := json.Marshal(r)
			require.NoError(t, err)
			out := string(data)

			for _, key := range []string{"correct_answer", "is_correct", "user_answer", "boolean_answer", "text_answer", "sample_solution", "test_case_results"} {
				assert.NotContains(t, out, key)
			}
			for _, secret := range tc.secrets {
				assert.NotContains(t, out, secret)
			}
		})
	}
}

func TestBuild_AnsweredDisclosesPerType(t *testing.T) {
	b := NewBuilder(nil)
	submittedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	answer := &models.UserAnswer{Answer: "x", IsCorrect: true, SubmittedAt: submittedAt, TimeSpentSeconds: 42}

	cases := disclosureCases()

	mcq := b.Build(question(t, 1, cases[0].meta), answer)
	require.NotNil(t, mcq.CorrectAnswer)
	assert.Equal(t, []CorrectOption{{ID: "A", Text: "first"}, {ID: "B", Text: "second", IsCorrect: true}}, mcq.CorrectAnswer.Options)

	tf := b.Build(question(t, 2, cases[1].meta), answer)
	require.NotNil(t, tf.CorrectAnswer.BooleanAnswer)
	assert.True(t, *tf.CorrectAnswer.BooleanAnswer)

	fill := b.Build(question(t, 3, cases[2].meta), answer)
	assert.Equal(t, strPtr("CANONICAL_FILL"), fill.CorrectAnswer.TextAnswer)

	es := b.Build(question(t, 4, cases[3].meta), answer)
	assert.Equal(t, strPtr("CANONICAL_FIX"), es.CorrectAnswer.TextAnswer)

	op := b.Build(question(t, 5, cases[4].meta), answer)
	assert.Equal(t, strPtr("EXPECTED_OUTPUT"), op.CorrectAnswer.TextAnswer)

	cw := b.Build(question(t, 6, cases[5].meta), answer)
	assert.Equal(t, strPtr("SAMPLE_SOLUTION"), cw.CorrectAnswer.SampleSolution)
	assert.Equal(t, []TestCaseResult{{Input: "TEST_INPUT", ExpectedOutput: "TEST_EXPECTED", UserOutput: nil, Passed: false}}, cw.CorrectAnswer.TestCaseResults)

	require.NotNil(t, cw.UserAnswer)
	assert.Equal(t, UserAnswerReview{Answer: "x", IsCorrect: true, SubmittedAt: submittedAt, TimeSpentSeconds: 42}, *cw.UserAnswer)
}

func TestBuild_ContentFieldsPerType(t *testing.T) {
	b := NewBuilder(nil)
	cases := disclosureCases()

	mcq := b.Preview(question(t, 1, cases[0].meta)).Content
	assert.Equal(t, []OptionChoice{{ID: "A", Text: "first"}, {ID: "B", Text: "second"}}, mcq.Options)
	assert.Nil(t, mcq.CodeWithBlank)
	assert.Nil(t, mcq.CodeWithError)
	assert.Nil(t, mcq.Snippet)

	fill := b.Preview(question(t, 3, cases[2].meta)).Content
	assert.Equal(t, strPtr("var x = ___;"), fill.CodeWithBlank)
	assert.Nil(t, fill.CodeWithError)
	assert.Nil(t, fill.Snippet)
	assert.Nil(t, fill.Options)

	es := b.Preview(question(t, 4, cases[3].meta)).Content
	assert.Equal(t, strPtr("int x = \"a\";"), es.CodeWithError)
	assert.Nil(t, es.CodeWithBlank)

	op := b.Preview(question(t, 5, cases[4].meta)).Content
	assert.Equal(t, strPtr("Console.Write(x);"), op.Snippet)
	assert.Nil(t, op.CodeWithBlank)

	cw := b.Preview(question(t, 6, cases[5].meta)).Content
	assert.Equal(t, []string{"Sum(1, 2)"}, cw.Examples)
	assert.Equal(t, strPtr("using System;"), cw.CodeBefore)
	assert.Nil(t, cw.CodeAfter)
}

func TestBuild_HintsAndBlankFields(t *testing.T) {
	meta := &models.FillMetadata{
		MetadataBase: models.MetadataBase{
			CodeBefore: strPtr("   "),
			Hints: []models.Hint{
				{Hint: "third", OrderIndex: 3},
				{Hint: " ", OrderIndex: 0},
				{Hint: "first", OrderIndex: 1},
				{Hint: "second", OrderIndex: 2},
			},
			Explanation: strPtr(""),
		},
		CodeWithBlank: "",
		CorrectAnswer: "x",
	}

	r := NewBuilder(nil).Preview(question(t, 1, meta))
	assert.Equal(t, []string{"first", "second", "third"}, r.Hints)
	assert.Nil(t, r.Explanation)
	assert.Nil(t, r.Content.CodeBefore)
	assert.Nil(t, r.Content.CodeWithBlank)
}

func TestBuild_SkipsBlankOptionsAndTestCases(t *testing.T) {
	b := NewBuilder(nil)
	answer := &models.UserAnswer{Answer: "a"}

	mcq := b.Build(question(t, 1, &models.MCQMetadata{Options: []models.MCQOption{
		{ID: "", Text: "no id", IsCorrect: true},
		{ID: "B", Text: " "},
		{ID: "C", Text: "kept", IsCorrect: true},
	}}), answer)
	assert.Equal(t, []CorrectOption{{ID: "C", Text: "kept", IsCorrect: true}}, mcq.CorrectAnswer.Options)

	cw := b.Build(question(t, 2, &models.CodeWritingMetadata{TestCases: []models.TestCase{
		{Input: "", ExpectedOutput: "1"},
		{Input: "2", ExpectedOutput: " "},
		{Input: "3", ExpectedOutput: "4"},
	}}), answer)
	assert.Equal(t, []TestCaseResult{{Input: "3", ExpectedOutput: "4"}}, cw.CorrectAnswer.TestCaseResults)
	assert.Nil(t, cw.CorrectAnswer.SampleSolution)
}

func TestBuild_MalformedMetadataDegrades(t *testing.T) {
	var buf bytes.Buffer
	b := NewBuilder(slog.New(slog.NewJSONHandler(&buf, nil)))

	q := &models.Question{ID: 5, Type: models.QuestionMCQ, Prompt: "broken", Metadata: []byte(`{"options":`)}
	r := b.Build(q, &models.UserAnswer{Answer: `["A"]`})

	assert.Equal(t, "broken", r.Prompt)
	assert.Equal(t, ContentReview{}, r.Content)
	assert.Nil(t, r.CorrectAnswer)
	assert.Nil(t, r.Hints)
	require.NotNil(t, r.UserAnswer)
	assert.Contains(t, buf.String(), "Malformed question metadata")
}
