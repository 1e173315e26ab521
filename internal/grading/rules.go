package grading

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

const codeFence = "```"

func checkMCQ(meta models.Metadata, answer string) bool {
	m, ok := meta.(*models.MCQMetadata)
	if !ok {
		return false
	}

	var selected []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &selected); err != nil {
		return false
	}

	correct := toSet(m.CorrectOptionIDs())
	if len(correct) == 0 {
		return false
	}
	return setEqual(correct, toSet(selected))
}

func checkTrueFalse(meta models.Metadata, answer string) bool {
	m, ok := meta.(*models.TrueFalseMetadata)
	if !ok || m.CorrectAnswer == nil {
		return false
	}

	value, ok := parseBool(answer)
	if !ok {
		return false
	}
	return value == *m.CorrectAnswer
}

func checkFill(meta models.Metadata, answer string) bool {
	m, ok := meta.(*models.FillMetadata)
	if !ok {
		return false
	}
	return codeEqual(m.CorrectAnswer, answer)
}

func checkErrorSpotting(meta models.Metadata, answer string) bool {
	m, ok := meta.(*models.ErrorSpottingMetadata)
	if !ok {
		return false
	}
	return codeEqual(m.CorrectAnswer, answer)
}

// Output comparison ignores letter case so "True" and "true" from different runtimes agree.
func checkOutputPrediction(meta models.Metadata, answer string) bool {
	m, ok := meta.(*models.OutputPredictionMetadata)
	if !ok {
		return false
	}
	submitted := strings.TrimSpace(answer)
	if submitted == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(m.ExpectedOutput), submitted)
}

// Submitted code is never executed; any non-blank submission counts as correct.
func checkCodeWriting(meta models.Metadata, answer string) bool {
	if _, ok := meta.(*models.CodeWritingMetadata); !ok {
		return false
	}
	return strings.TrimSpace(answer) != ""
}

func codeEqual(canonical, submitted string) bool {
	s := NormalizeCode(submitted)
	if s == "" {
		return false
	}
	return NormalizeCode(canonical) == s
}

// NormalizeCode strips a surrounding fenced code block, including an optional language tag
// on the opening fence, and trims whitespace.
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, codeFence) {
		rest := s[len(codeFence):]
		if i := strings.IndexByte(rest, '\n'); i >= 0 && isLanguageTag(strings.TrimSpace(rest[:i])) {
			rest = rest[i+1:]
		}
		s = strings.TrimSpace(rest)
	}

	if strings.HasSuffix(s, codeFence) {
		s = strings.TrimSpace(strings.TrimSuffix(s, codeFence))
	}
	return s
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("+#-_.", r) {
			return false
		}
	}
	return true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
