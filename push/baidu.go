package push

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foomo/contentserver-seo/settings"
)

const DefaultBaiduBaseURL = "http://data.zz.baidu.com"

// Baidu posts the plain link as body, site and token are query parameters.
type Baidu struct {
	httpClient *http.Client
	baseURL    string
}

func NewBaidu(httpClient *http.Client, baseURL string) *Baidu {
	return &Baidu{
		httpClient: clientOrDefault(httpClient),
		baseURL:    baseOrDefault(baseURL, DefaultBaiduBaseURL),
	}
}

func (b *Baidu) Name() string {
	return "baidu"
}

func (b *Baidu) Credentials(cfg settings.AdvancedConfig) (bool, string) {
	return cfg.EnableBaiduPush, cfg.BaiduAPIKey
}

func (b *Baidu) SubmitURL(ctx context.Context, apiKey, site, pageURL string) error {
	return b.post(ctx, "/urls", apiKey, site, pageURL)
}

func (b *Baidu) SubmitSitemap(ctx context.Context, apiKey, site, sitemapURL string) error {
	return b.post(ctx, "/sitemap", apiKey, site, sitemapURL)
}

func (b *Baidu) post(ctx context.Context, path, apiKey, site, link string) error {
	query := url.Values{}
	query.Set("site", site)
	query.Set("token", apiKey)
	return send(ctx, b.httpClient, request{
		target:      b.Name(),
		method:      http.MethodPost,
		endpoint:    b.baseURL + path + "?" + query.Encode(),
		contentType: "text/plain",
		body:        []byte(link),
	})
}
