// Package push notifies search engine indexing APIs about changed pages and
// sitemaps.
package push

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/foomo/contentserver-seo/settings"
)

// maxErrorBody caps how much of a rejected response ends up in a StatusError.
const maxErrorBody = 512

var ErrNotConfigured = errors.New("api key not configured")

// Target is one search engine API. Implementations must be safe for
// concurrent use.
type Target interface {
	Name() string
	// Credentials reports whether the target is switched on in cfg and the
	// key it submits with.
	Credentials(cfg settings.AdvancedConfig) (enabled bool, apiKey string)
	SubmitURL(ctx context.Context, apiKey, site, pageURL string) error
	SubmitSitemap(ctx context.Context, apiKey, site, sitemapURL string) error
}

// StatusError is returned when a target answers with a non 2xx status.
type StatusError struct {
	Target     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s responded with status %d", e.Target, e.StatusCode)
	}
	return fmt.Sprintf("%s responded with status %d: %s", e.Target, e.StatusCode, e.Body)
}

// DefaultTargets returns the Google, Bing and Baidu targets on their public
// endpoints, sharing httpClient.
func DefaultTargets(httpClient *http.Client) []Target {
	return []Target{
		NewGoogle(httpClient, ""),
		NewBing(httpClient, ""),
		NewBaidu(httpClient, ""),
	}
}

type request struct {
	target      string
	method      string
	endpoint    string
	contentType string
	bearer      string
	body        []byte
}

func send(ctx context.Context, httpClient *http.Client, r request) error {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", r.target, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", r.target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Target:     r.target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// siteURL returns the configured site or the origin of the first usable link.
func siteURL(configured string, links ...string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		return u.Scheme + "://" + u.Host + "/"
	}
	return ""
}

func baseOrDefault(base, def string) string {
	if base == "" {
		return def
	}
	return strings.TrimRight(base, "/")
}

func clientOrDefault(httpClient *http.Client) *http.Client {
	if httpClient == nil {
		return NewHTTPClient(nil)
	}
	return httpClient
}
