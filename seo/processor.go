package seo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foomo/contentserver-seo/content"
	"github.com/foomo/contentserver-seo/detect"
	"github.com/foomo/contentserver-seo/service/vo"
	"go.uber.org/zap"
)

// Result is a rendered head for one post.
type Result struct {
	Data vo.SeoData  `json:"data"`
	Type detect.Type `json:"type"`
	HTML string      `json:"html"`
}

// Processor renders the head fragments for posts addressed by name.
type Processor interface {
	Build(ctx context.Context, name string) (*Result, error)
	// Process returns the rendered head or the empty string when the post
	// cannot be rendered.
	Process(ctx context.Context, name string) string
}

type processor struct {
	l           *zap.Logger
	synthesizer *Synthesizer
}

func NewProcessor(l *zap.Logger, synthesizer *Synthesizer) Processor {
	if l == nil {
		l = zap.NewNop()
	}
	return &processor{l: l, synthesizer: synthesizer}
}

func (p *processor) Build(ctx context.Context, name string) (*Result, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("post name is empty")
	}
	post, err := p.synthesizer.store.GetPost(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %q: %w", name, err)
	}
	if post == nil {
		return nil, fmt.Errorf("failed to get post %q: %w", name, content.ErrNotFound)
	}
	data, cfg := p.synthesizer.synthesize(ctx, *post)
	return &Result{
		Data: data,
		Type: detect.Detect(data.RawContent, detect.ParseMode(cfg.ContentTypeDetection)),
		HTML: Render(data, cfg),
	}, nil
}

func (p *processor) Process(ctx context.Context, name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	result, err := p.Build(ctx, name)
	if err != nil {
		p.l.Warn("failed to render seo head", zap.String("post", name), zap.Error(err))
		return ""
	}
	return result.HTML
}
