package seo

import (
	"html"
	"strings"

	"github.com/foomo/contentserver-seo/detect"
	"github.com/foomo/contentserver-seo/service/vo"
	"github.com/foomo/contentserver-seo/settings"
)

const (
	defaultRobotsIndex  = "index"
	defaultRobotsFollow = "follow"
	twitterCard         = "summary_large_image"
)

type fragment struct {
	name    string
	enabled func(cfg settings.BasicConfig) bool
	render  func(b *strings.Builder, data vo.SeoData, cfg settings.BasicConfig)
}

// fragments are rendered in this order.
var fragments = []fragment{
	{
		name:    "canonical",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableCanonicalTags },
		render:  renderCanonical,
	},
	{
		name:    "baidu",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableBaiduStructured },
		render:  renderBaidu,
	},
	{
		name:    "schema.org",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableSchemaOrg },
		render:  renderSchemaOrg,
	},
	{
		name:    "open graph",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableOpenGraph },
		render:  renderOpenGraph,
	},
	{
		name:    "twitter",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableTwitterCards },
		render:  renderTwitter,
	},
	{
		name:    "robots",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableRobotsMeta },
		render:  renderRobots,
	},
	{
		name:    "enhanced social",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableEnhancedSocial },
		render:  renderEnhancedSocial,
	},
	{
		name:    "linkedin",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableLinkedIn },
		render:  renderLinkedIn,
	},
	{
		name:    "facebook",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableFacebook },
		render:  renderFacebook,
	},
	{
		name:    "wechat",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableWeChatSharing },
		render:  renderWeChat,
	},
	{
		name: "content schema",
		enabled: func(cfg settings.BasicConfig) bool {
			return cfg.EnableFAQSchema || cfg.EnableHowToSchema
		},
		render: renderContentSchema,
	},
	{
		name:    "verification",
		enabled: func(cfg settings.BasicConfig) bool { return cfg.EnableVerification },
		render:  renderVerification,
	},
}

// Render returns the head fragments enabled by cfg for data. A config with
// every toggle off renders the empty string.
func Render(data vo.SeoData, cfg settings.BasicConfig) string {
	var b strings.Builder
	for _, f := range fragments {
		if f.enabled(cfg) {
			f.render(&b, data, cfg)
		}
	}
	return b.String()
}

func renderCanonical(b *strings.Builder, data vo.SeoData, _ settings.BasicConfig) {
	if data.CanonicalURL == "" {
		return
	}
	b.WriteString(`<link rel="canonical" href="`)
	b.WriteString(html.EscapeString(data.CanonicalURL))
	b.WriteString("\" />\n")
}

func renderBaidu(b *strings.Builder, data vo.SeoData, _ settings.BasicConfig) {
	writeJSONLD(b, Cambrian(data.CanonicalURL, data.Title, data.LocalPublished, data.LocalUpdated))
}

func renderSchemaOrg(b *strings.Builder, data vo.SeoData, cfg settings.BasicConfig) {
	publisher := cfg.PublisherName
	if publisher == "" {
		publisher = data.SiteName
	}
	writeJSONLD(b, Article(cfg.ArticleSchemaType, data, publisher))
}

func renderOpenGraph(b *strings.Builder, data vo.SeoData, _ settings.BasicConfig) {
	writeProperty(b, "og:type", "article")
	writeProperty(b, "og:title", data.Title)
	writeProperty(b, "og:description", data.Description)
	writeProperty(b, "og:image", data.CoverURL)
	writeProperty(b, "og:url", data.CanonicalURL)
	writeProperty(b, "og:release_date", data.LocalPublished)
	writeProperty(b, "og:modified_time", data.LocalUpdated)
	writeProperty(b, "og:author", data.Author)
}

func renderTwitter(b *strings.Builder, data vo.SeoData, cfg settings.BasicConfig) {
	writeName(b, "twitter:card", twitterCard)
	writeName(b, "twitter:site", cfg.TwitterSite)
	writeName(b, "twitter:title", data.Title)
	writeName(b, "twitter:description", data.Description)
	writeName(b, "twitter:image", data.CoverURL)
}

func renderRobots(b *strings.Builder, _ vo.SeoData, cfg settings.BasicConfig) {
	index := cfg.RobotsIndex
	if index == "" {
		index = defaultRobotsIndex
	}
	follow := cfg.RobotsFollow
	if follow == "" {
		follow = defaultRobotsFollow
	}
	writeName(b, "robots", index+","+follow)
}

func renderEnhancedSocial(b *strings.Builder, data vo.SeoData, _ settings.BasicConfig) {
	writeProperty(b, "og:site_name", data.SiteName)
	if data.CoverURL != "" {
		writeProperty(b, "og:image:alt", data.Title)
	}
	for _, keyword := range strings.Split(data.Keywords, ",") {
		writeProperty(b, "article:tag", strings.TrimSpace(keyword))
	}
}

func renderLinkedIn(b *strings.Builder, data vo.SeoData, _ settings.BasicConfig) {
	writeProperty(b, "og:title", data.Title)
	writeProperty(b, "og:description", data.Description)
	writeProperty(b, "og:image", data.CoverURL)
	writeProperty(b, "article:author", data.Author)
	writeProperty(b, "article:published_time", data.OffsetPublished)
}

func renderFacebook(b *strings.Builder, data vo.SeoData, cfg settings.BasicConfig) {
	writeProperty(b, "fb:app_id", cfg.FacebookAppID)
	writeProperty(b, "article:published_time", data.OffsetPublished)
	writeProperty(b, "article:modified_time", data.OffsetUpdated)
	writeProperty(b, "article:author", data.Author)
}

// renderWeChat emits the tags WeChat and QQ read for share cards.
func renderWeChat(b *strings.Builder, data vo.SeoData, _ settings.BasicConfig) {
	writeProperty(b, "og:title", data.Title)
	writeProperty(b, "og:description", data.Description)
	writeProperty(b, "og:image", data.CoverURL)
	writeName(b, "format-detection", "telephone=no")
}

func renderContentSchema(b *strings.Builder, data vo.SeoData, cfg settings.BasicConfig) {
	switch detect.Detect(data.RawContent, detect.ParseMode(cfg.ContentTypeDetection)) {
	case detect.TypeFAQ:
		if !cfg.EnableFAQSchema {
			return
		}
		if pairs := ExtractQuestions(data.RawContent); len(pairs) > 0 {
			writeJSONLD(b, FAQPage(pairs))
		}
	case detect.TypeHowTo:
		if !cfg.EnableHowToSchema {
			return
		}
		if steps := ExtractSteps(data.RawContent); len(steps) > 0 {
			writeJSONLD(b, HowTo(data.Title, data.Description, data.CoverURL, steps))
		}
	}
}

func renderVerification(b *strings.Builder, _ vo.SeoData, cfg settings.BasicConfig) {
	writeName(b, "google-site-verification", cfg.GoogleVerificationCode)
	writeName(b, "msvalidate.01", cfg.BingVerificationCode)
	writeName(b, "baidu-site-verification", cfg.BaiduVerificationCode)
}

// writeProperty skips empty values.
func writeProperty(b *strings.Builder, property, value string) {
	writeMeta(b, "property", property, value)
}

func writeName(b *strings.Builder, name, value string) {
	writeMeta(b, "name", name, value)
}

func writeMeta(b *strings.Builder, attr, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(`<meta `)
	b.WriteString(attr)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(key))
	b.WriteString(`" content="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString("\" />\n")
}

// writeJSONLD relies on encoding/json escaping <, > and & so that content
// cannot close the script element.
func writeJSONLD(b *strings.Builder, v any) {
	s := JSON(v)
	if s == "" {
		return
	}
	b.WriteString(`<script type="application/ld+json">`)
	b.WriteString(s)
	b.WriteString("</script>\n")
}
