// Package detect classifies raw content text by simple keyword heuristics.
package detect

import (
	"strings"
)

type Type string

const (
	TypeNone  Type = "none"
	TypeFAQ   Type = "faq"
	TypeHowTo Type = "howto"
)

type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeManual   Mode = "manual"
	ModeDisabled Mode = "disabled"
)

// ParseMode maps a configuration string to a Mode. Anything unknown is
// ModeDisabled.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAuto:
		return ModeAuto
	case ModeManual:
		return ModeManual
	default:
		return ModeDisabled
	}
}

var faqMarkers = []string{
	"faq",
	"frequently asked questions",
	"question:",
	"answer:",
	"q&a",
	"常见问题",
	"问答",
	"问题：",
	"答案：",
}

// faqLinePrefixes only match at the start of a line.
var faqLinePrefixes = []string{"q:", "问："}

var howToMarkers = []string{
	"how to",
	"tutorial",
	"guide",
	"step",
	"教程",
	"指南",
	"步骤",
	"如何",
}

// Detect returns the content type of content. Only ModeAuto inspects the
// text; manual tagging is not implemented so ModeManual yields TypeNone.
// FAQ markers win over how-to markers.
func Detect(content string, mode Mode) Type {
	if mode != ModeAuto || content == "" {
		return TypeNone
	}
	lower := strings.ToLower(content)
	if containsAny(lower, faqMarkers) || hasLinePrefix(lower, faqLinePrefixes) {
		return TypeFAQ
	}
	if containsAny(lower, howToMarkers) {
		return TypeHowTo
	}
	return TypeNone
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func hasLinePrefix(s string, prefixes []string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		for _, p := range prefixes {
			if strings.HasPrefix(line, p) {
				return true
			}
		}
	}
	return false
}
