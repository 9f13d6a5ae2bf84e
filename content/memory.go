package content

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/foomo/contentserver-seo/service/vo"
)

// MemoryStore is an in process Store, used for fixtures and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[string]vo.Post
	users map[string]vo.User
	tags  map[string]vo.Tag
	site  *vo.SiteInfo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts: map[string]vo.Post{},
		users: map[string]vo.User{},
		tags:  map[string]vo.Tag{},
	}
}

func (m *MemoryStore) AddPost(p vo.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.Name] = p
}

func (m *MemoryStore) AddUser(u vo.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Name] = u
}

func (m *MemoryStore) AddTag(t vo.Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[t.Name] = t
}

func (m *MemoryStore) SetSiteInfo(info vo.SiteInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.site = &info
}

func (m *MemoryStore) GetPost(ctx context.Context, name string) (*vo.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[name]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", name, ErrNotFound)
	}
	p.Tags = append([]string(nil), p.Tags...)
	return &p, nil
}

func (m *MemoryStore) GetUser(ctx context.Context, name string) (*vo.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[name]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryStore) ListTags(ctx context.Context, names []string) ([]vo.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	tags := make([]vo.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		t, ok := m.tags[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (m *MemoryStore) GetSiteInfo(ctx context.Context) (*vo.SiteInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.site == nil {
		return nil, fmt.Errorf("site info: %w", ErrNotFound)
	}
	info := *m.site
	return &info, nil
}
