// Package content resolves posts, authors, tags and site information from the
// content store. It only reads.
package content

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/foomo/contentserver-seo/service/vo"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	GetPost(ctx context.Context, name string) (*vo.Post, error)
	GetUser(ctx context.Context, name string) (*vo.User, error)
	// ListTags returns the tags that exist for names, ordered by name.
	ListTags(ctx context.Context, names []string) ([]vo.Tag, error)
	GetSiteInfo(ctx context.Context) (*vo.SiteInfo, error)
}

// AbsoluteLink resolves link against base. Absolute links and links that
// cannot be parsed are returned unchanged.
func AbsoluteLink(base, link string) string {
	link = strings.TrimSpace(link)
	if link == "" || base == "" {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() {
		return link
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return link
	}
	return baseURL.ResolveReference(ref).String()
}
