package seo

import (
	"encoding/json"

	"github.com/foomo/contentserver-seo/service/vo"
)

const (
	schemaContext   = "https://schema.org"
	cambrianContext = "https://ziyuan.baidu.com/contexts/cambrian.jsonld"

	defaultArticleType = "BlogPosting"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Cambrian returns the Baidu cambrian payload carrying publish and update times.
func Cambrian(url, title, pubDate, upDate string) map[string]any {
	return map[string]any{
		"@context": cambrianContext,
		"@id":      url,
		"title":    title,
		"pubDate":  pubDate,
		"upDate":   upDate,
	}
}

// Article returns a schema.org article of the given type. Empty values are
// left out.
func Article(articleType string, data vo.SeoData, publisherName string) map[string]any {
	if articleType == "" {
		articleType = defaultArticleType
	}
	m := map[string]any{
		"@context": schemaContext,
		"@type":    articleType,
		"headline": data.Title,
	}
	if data.CanonicalURL != "" {
		m["url"] = data.CanonicalURL
		m["mainEntityOfPage"] = map[string]any{"@type": "WebPage", "@id": data.CanonicalURL}
	}
	if data.Description != "" {
		m["description"] = data.Description
	}
	if data.OffsetPublished != "" {
		m["datePublished"] = data.OffsetPublished
	}
	if data.OffsetUpdated != "" {
		m["dateModified"] = data.OffsetUpdated
	}
	if data.Author != "" {
		m["author"] = map[string]any{"@type": "Person", "name": data.Author}
	}
	if data.CoverURL != "" {
		m["image"] = data.CoverURL
	}
	if data.Keywords != "" {
		m["keywords"] = data.Keywords
	}
	if publisherName != "" {
		publisher := map[string]any{"@type": "Organization", "name": publisherName}
		if data.SiteLogoURL != "" {
			publisher["logo"] = map[string]any{"@type": "ImageObject", "url": data.SiteLogoURL}
		}
		m["publisher"] = publisher
	}
	return m
}

// FAQPage builds a schema.org FAQPage from question and answer pairs.
func FAQPage(pairs []vo.QuestionAnswer) map[string]any {
	entities := make([]map[string]any, 0, len(pairs))
	for _, p := range pairs {
		entities = append(entities, map[string]any{
			"@type": "Question",
			"name":  p.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  p.Answer,
			},
		})
	}
	return map[string]any{
		"@context":   schemaContext,
		"@type":      "FAQPage",
		"mainEntity": entities,
	}
}

// HowTo builds a schema.org HowTo with numbered steps.
func HowTo(name, description, imageURL string, steps []string) map[string]any {
	el := make([]map[string]any, 0, len(steps))
	for i, step := range steps {
		el = append(el, map[string]any{
			"@type":    "HowToStep",
			"position": i + 1,
			"text":     step,
		})
	}
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "HowTo",
		"name":     name,
		"step":     el,
	}
	if description != "" {
		m["description"] = description
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	return m
}
