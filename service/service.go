package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/foomo/contentserver-seo/push"
	"github.com/foomo/contentserver-seo/seo"
	"github.com/foomo/contentserver-seo/service/vo"
	"github.com/foomo/contentserver-seo/settings"
	"go.uber.org/zap"
)

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrInvalidURL  = errors.New("invalid url")
)

type Service interface {
	// RenderSeo renders the head fragments for the post at path.
	RenderSeo(ctx context.Context, path string) (*seo.Result, error)
	// Push submits pageURL and the optional sitemapURL to the enabled engines.
	Push(ctx context.Context, pageURL, sitemapURL string) (vo.DispatchSummary, error)
	// PushSitemap only submits sitemapURL.
	PushSitemap(ctx context.Context, sitemapURL string) (vo.DispatchSummary, error)
}

type service struct {
	l          *zap.Logger
	processor  seo.Processor
	dispatcher *push.Dispatcher
	settings   settings.Getter
}

func NewService(
	l *zap.Logger,
	processor seo.Processor,
	dispatcher *push.Dispatcher,
	getter settings.Getter,
) Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &service{
		l:          l,
		processor:  processor,
		dispatcher: dispatcher,
		settings:   getter,
	}
}

// isValidURI checks if a URI is valid for processing
func isValidURI(uri string) bool {
	return uri != "" && strings.HasPrefix(uri, "/")
}

// isValidURL accepts absolute http and https links only.
func isValidURL(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *service) RenderSeo(ctx context.Context, path string) (*seo.Result, error) {
	if !isValidURI(path) {
		return nil, ErrInvalidPath
	}
	s.l.Debug("rendering seo head", zap.String("path", path))
	return s.processor.Build(ctx, path)
}

func (s *service) Push(ctx context.Context, pageURL, sitemapURL string) (vo.DispatchSummary, error) {
	if !isValidURL(pageURL) {
		return vo.DispatchSummary{}, ErrInvalidURL
	}
	if sitemapURL != "" && !isValidURL(sitemapURL) {
		return vo.DispatchSummary{}, ErrInvalidURL
	}
	s.l.Debug("pushing url", zap.String("url", pageURL), zap.String("sitemap", sitemapURL))
	return s.dispatcher.DispatchConfig(ctx, s.settings, pageURL, sitemapURL), nil
}

func (s *service) PushSitemap(ctx context.Context, sitemapURL string) (vo.DispatchSummary, error) {
	if !isValidURL(sitemapURL) {
		return vo.DispatchSummary{}, ErrInvalidURL
	}
	return s.dispatcher.DispatchConfig(ctx, s.settings, "", sitemapURL), nil
}
