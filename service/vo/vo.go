package vo

import (
	"time"
)

type Markdown string

// Post is a published content item as read from the content store.
type Post struct {
	Name           string     `json:"name"`                     // Unique identifier
	Title          string     `json:"title"`                    // Display title
	Excerpt        string     `json:"excerpt"`                  // Raw excerpt, may contain markup
	Cover          string     `json:"cover"`                    // Cover image, absolute or site relative
	Owner          string     `json:"owner"`                    // Identifier of the authoring user
	Permalink      string     `json:"permalink"`                // Public link, absolute or site relative
	Tags           []string   `json:"tags,omitempty"`           // Tag identifiers
	PublishTime    *time.Time `json:"publishTime,omitempty"`    // First publication
	LastModifyTime *time.Time `json:"lastModifyTime,omitempty"` // Last content change
	Content        string     `json:"content,omitempty"`        // Rendered body HTML
}

type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type Tag struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// SiteInfo holds the site wide settings needed for metadata.
type SiteInfo struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Logo     string `json:"logo"`
	Keywords string `json:"keywords"` // Comma separated site keywords
}

// SeoData is the canonical record a render is built from. Every field is a
// plain string; absent values are empty strings.
type SeoData struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	CoverURL        string `json:"coverUrl"`
	CanonicalURL    string `json:"canonicalUrl"`
	Author          string `json:"author"`
	LocalPublished  string `json:"localPublished"`  // 2006-01-02T15:04:05
	LocalUpdated    string `json:"localUpdated"`    // 2006-01-02T15:04:05
	OffsetPublished string `json:"offsetPublished"` // 2006-01-02T15:04:05Z07:00
	OffsetUpdated   string `json:"offsetUpdated"`   // 2006-01-02T15:04:05Z07:00
	SiteName        string `json:"siteName"`
	SiteLogoURL     string `json:"siteLogoUrl"`
	Keywords        string `json:"keywords"`
	RawContent      string `json:"rawContent"`
}

type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type SubmissionKind string

const (
	SubmissionKindURL     SubmissionKind = "url"
	SubmissionKindSitemap SubmissionKind = "sitemap"
)

// PushResult is the outcome of one submission to one target.
type PushResult struct {
	Target     string         `json:"target"`
	Kind       SubmissionKind `json:"kind"`
	Attempted  bool           `json:"attempted"`
	Succeeded  bool           `json:"succeeded"`
	Reason     string         `json:"reason"`
	StatusCode int            `json:"statusCode,omitempty"`
	Duration   time.Duration  `json:"duration,omitempty"`
}

type DispatchState string

const (
	DispatchStateSkipped   DispatchState = "skipped"
	DispatchStateCompleted DispatchState = "completed"
)

type DispatchSummary struct {
	ID         string        `json:"id"`
	URL        string        `json:"url,omitempty"`
	SitemapURL string        `json:"sitemapUrl,omitempty"`
	State      DispatchState `json:"state"`
	Reason     string        `json:"reason,omitempty"`
	Results    []PushResult  `json:"results"`
	Started    time.Time     `json:"started"`
}

// Succeeded counts the attempted submissions that were accepted.
func (s DispatchSummary) Succeeded() int {
	var n int
	for _, r := range s.Results {
		if r.Attempted && r.Succeeded {
			n++
		}
	}
	return n
}

// Failed counts the attempted submissions that were not accepted.
func (s DispatchSummary) Failed() int {
	var n int
	for _, r := range s.Results {
		if r.Attempted && !r.Succeeded {
			n++
		}
	}
	return n
}

// Result returns the result for the given target and kind.
func (s DispatchSummary) Result(target string, kind SubmissionKind) (PushResult, bool) {
	for _, r := range s.Results {
		if r.Target == target && r.Kind == kind {
			return r, true
		}
	}
	return PushResult{}, false
}
