package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foomo/contentserver-seo/service/vo"
	cscontent "github.com/foomo/contentserver/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsoluteLink(t *testing.T) {
	tests := []struct {
		base, link, want string
	}{
		{"https://example.com", "/posts/hello", "https://example.com/posts/hello"},
		{"https://example.com/blog/", "img/cover.png", "https://example.com/blog/img/cover.png"},
		{"https://example.com", "https://cdn.example.org/a.png", "https://cdn.example.org/a.png"},
		{"https://example.com", "", ""},
		{"", "/posts/hello", "/posts/hello"},
		{"not a base", "/posts/hello", "/posts/hello"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AbsoluteLink(tt.base, tt.link), "%s + %s", tt.base, tt.link)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.AddPost(vo.Post{Name: "hello", Title: "Hello", Tags: []string{"b", "a"}})
	store.AddUser(vo.User{Name: "jane", DisplayName: "Jane"})
	store.AddTag(vo.Tag{Name: "b", DisplayName: "Bee"})
	store.AddTag(vo.Tag{Name: "a", DisplayName: "Ay"})

	post, err := store.GetPost(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)

	_, err = store.GetPost(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.GetUser(ctx, "john")
	assert.True(t, errors.Is(err, ErrNotFound))

	tags, err := store.ListTags(ctx, []string{"b", "missing", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []vo.Tag{{Name: "a", DisplayName: "Ay"}, {Name: "b", DisplayName: "Bee"}}, tags)

	_, err = store.GetSiteInfo(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))
	store.SetSiteInfo(vo.SiteInfo{Title: "Site"})
	info, err := store.GetSiteInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Site", info.Title)
}

func TestMemoryStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().GetPost(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostFromItem(t *testing.T) {
	item := &cscontent.Item{
		ID:   "post-1",
		Name: "Fallback Name",
		URI:  "/blog/post-1",
		Data: map[string]interface{}{
			"excerpt":     "<p>Short</p>",
			"cover":       "/img/cover.png",
			"author":      "jane",
			"tags":        []interface{}{"seo", " marketing ", 42, ""},
			"publishTime": "2024-03-01T10:00:00Z",
			"content":     "<p>Body</p>",
		},
	}

	post := postFromItem(item)
	assert.Equal(t, "post-1", post.Name)
	assert.Equal(t, "Fallback Name", post.Title)
	assert.Equal(t, "<p>Short</p>", post.Excerpt)
	assert.Equal(t, "jane", post.Owner)
	assert.Equal(t, "/blog/post-1", post.Permalink)
	assert.Equal(t, []string{"seo", "marketing"}, post.Tags)
	require.NotNil(t, post.PublishTime)
	assert.True(t, post.PublishTime.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.Nil(t, post.LastModifyTime)
}

func TestDataHelpers(t *testing.T) {
	data := map[string]interface{}{
		"csv":      "a, b,,c",
		"unix":     float64(1700000000),
		"badTime":  "yesterday",
		"notAText": 12,
	}
	assert.Equal(t, []string{"a", "b", "c"}, dataStrings(data, "csv"))
	assert.Nil(t, dataStrings(nil, "csv"))
	require.NotNil(t, dataTime(data, "unix"))
	assert.Equal(t, int64(1700000000), dataTime(data, "unix").Unix())
	assert.Nil(t, dataTime(data, "badTime"))
	assert.Equal(t, "", dataString(data, "notAText"))

	info := siteInfoFromItem(&cscontent.Item{Name: "My Site", Data: map[string]interface{}{"logo": "/logo.png"}}, "https://example.com")
	assert.Equal(t, vo.SiteInfo{Title: "My Site", URL: "https://example.com", Logo: "/logo.png"}, info)
}
