package models

// Field names of the stored metadata blob. They must match the json tags below.
const (
	FieldCodeBefore     = "codeBefore"
	FieldCodeAfter      = "codeAfter"
	FieldHints          = "hints"
	FieldExplanation    = "explanation"
	FieldOptions        = "options"
	FieldCorrectAnswer  = "correctAnswer"
	FieldCodeWithBlank  = "codeWithBlank"
	FieldCodeWithError  = "codeWithError"
	FieldSnippet        = "snippet"
	FieldExpectedOutput = "expectedOutput"
	FieldSolution       = "solution"
	FieldExamples       = "examples"
	FieldTestCases      = "testCases"
)

// Metadata is the decoded, typed form of a question's metadata blob.
// The set of implementations is closed; switch on the concrete type.
type Metadata interface {
	QuestionType() QuestionType
	Common() *MetadataBase
	normalize()
}

type Hint struct {
	Hint       string `json:"hint"`
	OrderIndex int    `json:"orderIndex"`
}

// MetadataBase holds the fields shared by every schema.
type MetadataBase struct {
	CodeBefore  *string `json:"codeBefore"`
	CodeAfter   *string `json:"codeAfter"`
	Hints       []Hint  `json:"hints"`
	Explanation *string `json:"explanation"`
}

func (b *MetadataBase) Common() *MetadataBase { return b }

func (b *MetadataBase) normalizeBase() {
	if b.Hints == nil {
		b.Hints = []Hint{}
	}
}

type MCQOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type MCQMetadata struct {
	MetadataBase
	Options []MCQOption `json:"options"`
}

func (m *MCQMetadata) QuestionType() QuestionType { return QuestionMCQ }

func (m *MCQMetadata) normalize() {
	m.normalizeBase()
	if m.Options == nil {
		m.Options = []MCQOption{}
	}
}

// CorrectOptionIDs returns the ids flagged correct, in option order.
func (m *MCQMetadata) CorrectOptionIDs() []string {
	ids := make([]string, 0, len(m.Options))
	for _, o := range m.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// TrueFalseMetadata keeps CorrectAnswer as a pointer so an absent value grades nothing as correct.
type TrueFalseMetadata struct {
	MetadataBase
	CorrectAnswer *bool `json:"correctAnswer"`
}

func (m *TrueFalseMetadata) QuestionType() QuestionType { return QuestionTrueFalse }
func (m *TrueFalseMetadata) normalize()                 { m.normalizeBase() }

type FillMetadata struct {
	MetadataBase
	CodeWithBlank string `json:"codeWithBlank"`
	CorrectAnswer string `json:"correctAnswer"`
}

func (m *FillMetadata) QuestionType() QuestionType { return QuestionFill }
func (m *FillMetadata) normalize()                 { m.normalizeBase() }

type ErrorSpottingMetadata struct {
	MetadataBase
	CodeWithError string `json:"codeWithError"`
	CorrectAnswer string `json:"correctAnswer"`
}

func (m *ErrorSpottingMetadata) QuestionType() QuestionType { return QuestionErrorSpotting }
func (m *ErrorSpottingMetadata) normalize()                 { m.normalizeBase() }

type OutputPredictionMetadata struct {
	MetadataBase
	Snippet        string `json:"snippet"`
	ExpectedOutput string `json:"expectedOutput"`
}

func (m *OutputPredictionMetadata) QuestionType() QuestionType { return QuestionOutputPrediction }
func (m *OutputPredictionMetadata) normalize()                 { m.normalizeBase() }

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

type CodeWritingMetadata struct {
	MetadataBase
	Solution  *string    `json:"solution"`
	Examples  []string   `json:"examples"`
	TestCases []TestCase `json:"testCases"`
}

func (m *CodeWritingMetadata) QuestionType() QuestionType { return QuestionCodeWriting }

func (m *CodeWritingMetadata) normalize() {
	m.normalizeBase()
	if m.Examples == nil {
		m.Examples = []string{}
	}
	if m.TestCases == nil {
		m.TestCases = []TestCase{}
	}
}
