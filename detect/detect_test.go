package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		content string
		mode    Mode
		want    Type
	}{
		{name: "empty", content: "", mode: ModeAuto, want: TypeNone},
		{name: "faq marker", content: "Our FAQ section", mode: ModeAuto, want: TypeFAQ},
		{name: "question prefix", content: "Question: why?", mode: ModeAuto, want: TypeFAQ},
		{name: "q line", content: "Intro\n  Q: What is SEO?\nA: Search engine optimization.", mode: ModeAuto, want: TypeFAQ},
		{name: "q inside word", content: "we faced an iraq: region issue", mode: ModeAuto, want: TypeNone},
		{name: "q and a", content: "A short Q&A", mode: ModeAuto, want: TypeFAQ},
		{name: "localized faq", content: "常见问题汇总", mode: ModeAuto, want: TypeFAQ},
		{name: "how to", content: "How To bake bread", mode: ModeAuto, want: TypeHowTo},
		{name: "tutorial", content: "a Go tutorial", mode: ModeAuto, want: TypeHowTo},
		{name: "localized how to", content: "安装教程", mode: ModeAuto, want: TypeHowTo},
		{name: "faq wins over how to", content: "FAQ: how to install, step by step", mode: ModeAuto, want: TypeFAQ},
		{name: "generic", content: "Just some thoughts on the weather.", mode: ModeAuto, want: TypeNone},
		{name: "manual never detects", content: "FAQ", mode: ModeManual, want: TypeNone},
		{name: "disabled never detects", content: "how to", mode: ModeDisabled, want: TypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.content, tt.mode))
		})
	}
}

func TestDetectLargeInput(t *testing.T) {
	content := strings.Repeat("lorem ipsum dolor ", 200000) + "step"
	assert.Equal(t, TypeHowTo, Detect(content, ModeAuto))
}

func TestDetectInvalidUTF8(t *testing.T) {
	got := Detect(string([]byte{0xff, 0xfe, 'f', 'a', 'q'}), ModeAuto)
	assert.Equal(t, TypeFAQ, got)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeAuto, ParseMode("AUTO"))
	assert.Equal(t, ModeManual, ParseMode(" manual "))
	assert.Equal(t, ModeDisabled, ParseMode("disabled"))
	assert.Equal(t, ModeDisabled, ParseMode(""))
	assert.Equal(t, ModeDisabled, ParseMode("sometimes"))
}
