// Package seo builds SeoData for a post and renders the enabled head
// fragments for it.
package seo

import (
	"context"
	"errors"
	"html"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/foomo/contentserver-seo/content"
	"github.com/foomo/contentserver-seo/scrape"
	"github.com/foomo/contentserver-seo/service/vo"
	"github.com/foomo/contentserver-seo/settings"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	localLayout  = "2006-01-02T15:04:05"
	offsetLayout = "2006-01-02T15:04:05Z07:00"
)

type Synthesizer struct {
	l               *zap.Logger
	store           content.Store
	settings        settings.Getter
	location        *time.Location
	policy          *bluemonday.Policy
	pageClient      *http.Client
	contentSelector string
}

type Option func(*Synthesizer)

func WithLogger(l *zap.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.l = l
		}
	}
}

// WithLocation sets the zone timestamps are formatted in. Defaults to
// time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Synthesizer) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithPageFallback scrapes the published page for raw content when the post
// carries no body. selector picks the content element, empty means body.
func WithPageFallback(httpClient *http.Client, selector string) Option {
	return func(s *Synthesizer) {
		s.pageClient = httpClient
		if s.pageClient == nil {
			s.pageClient = http.DefaultClient
		}
		s.contentSelector = selector
	}
}

func NewSynthesizer(store content.Store, getter settings.Getter, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		l:        zap.NewNop(),
		store:    store,
		settings: getter,
		location: time.Local,
		policy:   bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds the SeoData for post. It never fails; every source that
// cannot be read falls back to its default.
func (s *Synthesizer) Synthesize(ctx context.Context, post vo.Post) vo.SeoData {
	data, _ := s.synthesize(ctx, post)
	return data
}

func (s *Synthesizer) synthesize(ctx context.Context, post vo.Post) (vo.SeoData, settings.BasicConfig) {
	var (
		author   string
		keywords string
		cfg      settings.BasicConfig
		site     vo.SiteInfo
		g        errgroup.Group
	)
	// branches degrade on their own and never return an error
	g.Go(func() error {
		author = s.resolveAuthor(ctx, post)
		return nil
	})
	g.Go(func() error {
		keywords = s.resolveTagNames(ctx, post)
		return nil
	})
	g.Go(func() error {
		cfg = s.settings.BasicConfig(ctx)
		return nil
	})
	g.Go(func() error {
		site = s.resolveSiteInfo(ctx)
		return nil
	})
	_ = g.Wait()

	data := vo.SeoData{
		Title:           post.Title,
		Description:     s.resolveDescription(post.Excerpt),
		CoverURL:        resolveCover(site.URL, post.Cover, cfg.DefaultImage),
		CanonicalURL:    content.AbsoluteLink(site.URL, post.Permalink),
		Author:          author,
		LocalPublished:  formatTime(post.PublishTime, localLayout, s.location),
		LocalUpdated:    formatTime(post.LastModifyTime, localLayout, s.location),
		OffsetPublished: formatTime(post.PublishTime, offsetLayout, s.location),
		OffsetUpdated:   formatTime(post.LastModifyTime, offsetLayout, s.location),
		SiteName:        site.Title,
		SiteLogoURL:     content.AbsoluteLink(site.URL, site.Logo),
		Keywords:        resolveKeywords(keywords, site.Keywords),
	}
	data.RawContent = s.resolveRawContent(ctx, post, data.CanonicalURL)
	return data, cfg
}

func (s *Synthesizer) resolveAuthor(ctx context.Context, post vo.Post) string {
	if post.Owner == "" {
		return ""
	}
	user, err := s.store.GetUser(ctx, post.Owner)
	if err != nil {
		s.logLookupError("author", err, zap.String("owner", post.Owner))
		return post.Owner
	}
	if user == nil || strings.TrimSpace(user.DisplayName) == "" {
		return post.Owner
	}
	return user.DisplayName
}

// resolveTagNames joins the tag display names in tag name order.
func (s *Synthesizer) resolveTagNames(ctx context.Context, post vo.Post) string {
	if len(post.Tags) == 0 {
		return ""
	}
	tags, err := s.store.ListTags(ctx, post.Tags)
	if err != nil {
		s.logLookupError("tags", err, zap.Strings("tags", post.Tags))
		return ""
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t.DisplayName) != "" {
			names = append(names, t.DisplayName)
		} else {
			names = append(names, t.Name)
		}
	}
	return strings.Join(names, ",")
}

func (s *Synthesizer) resolveSiteInfo(ctx context.Context) vo.SiteInfo {
	info, err := s.store.GetSiteInfo(ctx)
	if err != nil || info == nil {
		s.logLookupError("site info", err)
		return vo.SiteInfo{}
	}
	return *info
}

// resolveDescription strips markup from the excerpt. The strict policy
// escapes entities, those are decoded again since rendering escapes.
func (s *Synthesizer) resolveDescription(excerpt string) string {
	if excerpt == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(excerpt)))
}

// resolveRawContent is plain text with one line per block, which is the
// shape the question and step extractors match against.
func (s *Synthesizer) resolveRawContent(ctx context.Context, post vo.Post, pageURL string) string {
	if strings.TrimSpace(post.Content) != "" {
		text, err := scrape.HTMLPlainText(post.Content, "")
		if err != nil {
			s.l.Warn("failed to convert post content", zap.String("post", post.Name), zap.Error(err))
			return ""
		}
		return text
	}
	if s.pageClient == nil || pageURL == "" {
		return ""
	}
	doc, err := scrape.Load(ctx, s.pageClient, pageURL)
	if err == nil {
		var text string
		if text, err = scrape.PlainText(doc, s.contentSelector); err == nil {
			return text
		}
	}
	s.l.Warn("failed to scrape page content", zap.String("url", pageURL), zap.Error(err))
	return ""
}

func (s *Synthesizer) logLookupError(what string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("lookup", what), zap.Error(err))
	if err == nil || errors.Is(err, content.ErrNotFound) {
		s.l.Debug("content lookup found nothing, using fallback", fields...)
		return
	}
	s.l.Warn("content lookup failed, using fallback", fields...)
}

func resolveCover(siteURL, cover, defaultImage string) string {
	if strings.TrimSpace(cover) == "" {
		cover = defaultImage
	}
	return content.AbsoluteLink(siteURL, cover)
}

func resolveKeywords(tagKeywords, siteKeywords string) string {
	if strings.TrimSpace(tagKeywords) == "" {
		return siteKeywords
	}
	return tagKeywords
}

func formatTime(t *time.Time, layout string, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format(layout)
}
