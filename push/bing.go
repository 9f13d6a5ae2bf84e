package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/foomo/contentserver-seo/settings"
)

const DefaultBingBaseURL = "https://ssl.bing.com"

// Bing submits through the webmaster JSON API, the key travels as a query
// parameter.
type Bing struct {
	httpClient *http.Client
	baseURL    string
}

func NewBing(httpClient *http.Client, baseURL string) *Bing {
	return &Bing{
		httpClient: clientOrDefault(httpClient),
		baseURL:    baseOrDefault(baseURL, DefaultBingBaseURL),
	}
}

func (b *Bing) Name() string {
	return "bing"
}

func (b *Bing) Credentials(cfg settings.AdvancedConfig) (bool, string) {
	return cfg.EnableBingPush, cfg.BingAPIKey
}

func (b *Bing) SubmitURL(ctx context.Context, apiKey, site, pageURL string) error {
	return b.post(ctx, "SubmitUrl", apiKey, map[string]string{
		"siteUrl": site,
		"url":     pageURL,
	})
}

func (b *Bing) SubmitSitemap(ctx context.Context, apiKey, site, sitemapURL string) error {
	return b.post(ctx, "SubmitSitemap", apiKey, map[string]string{
		"siteUrl":    site,
		"sitemapUrl": sitemapURL,
	})
}

func (b *Bing) post(ctx context.Context, method, apiKey string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal bing %s payload: %w", method, err)
	}
	return send(ctx, b.httpClient, request{
		target:      b.Name(),
		method:      http.MethodPost,
		endpoint:    b.baseURL + "/webmaster/api.svc/json/" + method + "?apikey=" + url.QueryEscape(apiKey),
		contentType: "application/json; charset=utf-8",
		body:        body,
	})
}
