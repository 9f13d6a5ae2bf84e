package content

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/foomo/contentserver-seo/service/vo"
	contentserverclient "github.com/foomo/contentserver/client"
	cscontent "github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
)

// SiteSettings tells the contentserver store where users, tags and the site
// root live in the repository tree.
type SiteSettings struct {
	Env              *requests.Env
	BaseURL          string
	ContentServerURL string
	SiteNodeID       string
	UsersNodeID      string
	TagsNodeID       string
	UserMimeTypes    []string
	TagMimeTypes     []string
}

type contentServerStore struct {
	client       *contentserverclient.Client
	siteSettings SiteSettings
}

// NewContentServerStore returns a Store reading from a foomo contentserver.
// Posts are addressed by their URI.
func NewContentServerStore(siteSettings SiteSettings, httpClient *http.Client) Store {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			siteSettings.ContentServerURL,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))
	return &contentServerStore{
		client:       client,
		siteSettings: siteSettings,
	}
}

func (s *contentServerStore) GetPost(ctx context.Context, name string) (*vo.Post, error) {
	siteContent, err := s.client.GetContent(ctx, &requests.Content{
		URI:   name,
		Env:   s.siteSettings.Env,
		Nodes: map[string]*requests.Node{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get content %q: %w", name, err)
	}
	if siteContent == nil || siteContent.Item == nil || siteContent.Status == cscontent.StatusNotFound {
		return nil, fmt.Errorf("post %q: %w", name, ErrNotFound)
	}
	post := postFromItem(siteContent.Item)
	return &post, nil
}

func (s *contentServerStore) GetUser(ctx context.Context, name string) (*vo.User, error) {
	node, err := s.childNode(ctx, s.siteSettings.UsersNodeID, s.siteSettings.UserMimeTypes, name)
	if err != nil {
		return nil, err
	}
	return &vo.User{
		Name:        name,
		DisplayName: firstNonEmpty(dataString(node.Item.Data, "displayName"), node.Item.Name),
	}, nil
}

func (s *contentServerStore) ListTags(ctx context.Context, names []string) ([]vo.Tag, error) {
	root, err := s.node(ctx, s.siteSettings.TagsNodeID, s.siteSettings.TagMimeTypes)
	if err != nil {
		return nil, err
	}
	tags := make([]vo.Tag, 0, len(names))
	for _, name := range names {
		child, ok := root.Nodes[name]
		if !ok || child.Item == nil {
			continue
		}
		tags = append(tags, tagFromItem(child.Item))
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *contentServerStore) GetSiteInfo(ctx context.Context) (*vo.SiteInfo, error) {
	root, err := s.node(ctx, s.siteSettings.SiteNodeID, nil)
	if err != nil {
		return nil, err
	}
	info := siteInfoFromItem(root.Item, s.siteSettings.BaseURL)
	return &info, nil
}

func (s *contentServerStore) node(ctx context.Context, id string, mimeTypes []string) (*cscontent.Node, error) {
	if id == "" {
		return nil, fmt.Errorf("node id not configured: %w", ErrNotFound)
	}
	nodes, err := s.client.GetNodes(ctx, s.siteSettings.Env, map[string]*requests.Node{
		id: {
			ID:        id,
			MimeTypes: mimeTypes,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get node %q: %w", id, err)
	}
	node, ok := nodes[id]
	if !ok || node == nil || node.Item == nil {
		return nil, fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	return node, nil
}

func (s *contentServerStore) childNode(ctx context.Context, parentID string, mimeTypes []string, id string) (*cscontent.Node, error) {
	parent, err := s.node(ctx, parentID, mimeTypes)
	if err != nil {
		return nil, err
	}
	child, ok := parent.Nodes[id]
	if !ok || child == nil || child.Item == nil {
		return nil, fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	return child, nil
}

func postFromItem(item *cscontent.Item) vo.Post {
	return vo.Post{
		Name:           item.ID,
		Title:          firstNonEmpty(dataString(item.Data, "title"), item.Name),
		Excerpt:        firstNonEmpty(dataString(item.Data, "excerpt"), dataString(item.Data, "description")),
		Cover:          dataString(item.Data, "cover"),
		Owner:          firstNonEmpty(dataString(item.Data, "owner"), dataString(item.Data, "author")),
		Permalink:      item.URI,
		Tags:           dataStrings(item.Data, "tags"),
		PublishTime:    dataTime(item.Data, "publishTime"),
		LastModifyTime: dataTime(item.Data, "lastModifyTime"),
		Content:        dataString(item.Data, "content"),
	}
}

func tagFromItem(item *cscontent.Item) vo.Tag {
	return vo.Tag{
		Name:        item.ID,
		DisplayName: firstNonEmpty(dataString(item.Data, "displayName"), item.Name),
	}
}

func siteInfoFromItem(item *cscontent.Item, baseURL string) vo.SiteInfo {
	return vo.SiteInfo{
		Title:    firstNonEmpty(dataString(item.Data, "title"), item.Name),
		URL:      firstNonEmpty(dataString(item.Data, "url"), baseURL),
		Logo:     dataString(item.Data, "logo"),
		Keywords: dataString(item.Data, "keywords"),
	}
}

func dataString(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	switch v := data[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

// dataStrings accepts a JSON array or a comma separated string.
func dataStrings(data map[string]interface{}, key string) []string {
	if data == nil {
		return nil
	}
	var values []string
	switch v := data[key].(type) {
	case []string:
		values = v
	case []interface{}:
		for _, e := range v {
			if s, ok := e.(string); ok {
				values = append(values, s)
			}
		}
	case string:
		values = strings.Split(v, ",")
	}
	var out []string
	for _, s := range values {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// dataTime accepts RFC 3339 strings and unix seconds.
func dataTime(data map[string]interface{}, key string) *time.Time {
	if data == nil {
		return nil
	}
	switch v := data[key].(type) {
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil
		}
		return &t
	case float64:
		if v <= 0 {
			return nil
		}
		t := time.Unix(int64(v), 0)
		return &t
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
