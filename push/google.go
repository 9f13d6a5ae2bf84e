package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/foomo/contentserver-seo/settings"
)

const DefaultGoogleBaseURL = "https://www.googleapis.com"

// Google submits through the webmasters API with bearer authentication.
type Google struct {
	httpClient *http.Client
	baseURL    string
}

func NewGoogle(httpClient *http.Client, baseURL string) *Google {
	return &Google{
		httpClient: clientOrDefault(httpClient),
		baseURL:    baseOrDefault(baseURL, DefaultGoogleBaseURL),
	}
}

func (g *Google) Name() string {
	return "google"
}

func (g *Google) Credentials(cfg settings.AdvancedConfig) (bool, string) {
	return cfg.EnableGooglePush, cfg.GoogleAPIKey
}

func (g *Google) SubmitURL(ctx context.Context, apiKey, site, pageURL string) error {
	body, err := json.Marshal(map[string]string{
		"url":  pageURL,
		"type": "URL_UPDATED",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal google notification: %w", err)
	}
	return send(ctx, g.httpClient, request{
		target:      g.Name(),
		method:      http.MethodPost,
		endpoint:    g.siteEndpoint(site) + "/urlNotifications:publish",
		contentType: "application/json",
		bearer:      apiKey,
		body:        body,
	})
}

func (g *Google) SubmitSitemap(ctx context.Context, apiKey, site, sitemapURL string) error {
	return send(ctx, g.httpClient, request{
		target:   g.Name(),
		method:   http.MethodPut,
		endpoint: g.siteEndpoint(site) + "/sitemaps/" + url.QueryEscape(sitemapURL),
		bearer:   apiKey,
	})
}

func (g *Google) siteEndpoint(site string) string {
	return g.baseURL + "/webmasters/v3/sites/" + url.QueryEscape(site)
}
