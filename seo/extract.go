package seo

import (
	"regexp"
	"strings"

	"github.com/foomo/contentserver-seo/service/vo"
)

var (
	questionPrefixes = []string{"question:", "q:", "问题：", "问："}
	answerPrefixes   = []string{"answer:", "a:", "答案：", "答："}
	stepPrefixes     = []string{"step", "步骤"}

	numberedLine = regexp.MustCompile(`^\d+\.`)
)

// ExtractQuestions pairs every question line with the next answer line. A
// question without an answer is dropped.
func ExtractQuestions(raw string) []vo.QuestionAnswer {
	var (
		pairs   []vo.QuestionAnswer
		pending string
		open    bool
	)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if q, ok := cutPrefixFold(line, questionPrefixes); ok {
			pending, open = q, true
			continue
		}
		if a, ok := cutPrefixFold(line, answerPrefixes); ok && open {
			pairs = append(pairs, vo.QuestionAnswer{Question: pending, Answer: a})
			pending, open = "", false
		}
	}
	return pairs
}

// ExtractSteps returns the numbered or "step" lines in order.
func ExtractSteps(raw string) []string {
	var steps []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if numberedLine.MatchString(line) || hasPrefixFold(line, stepPrefixes) {
			steps = append(steps, line)
		}
	}
	return steps
}

func cutPrefixFold(s string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return strings.TrimSpace(s[len(p):]), true
		}
	}
	return "", false
}

func hasPrefixFold(s string, prefixes []string) bool {
	_, ok := cutPrefixFold(s, prefixes)
	return ok
}
