package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/foomo/contentserver-seo/service/vo"
	"github.com/foomo/contentserver-seo/settings"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// engineServer fakes all three engines, paths containing fail get a 500.
type engineServer struct {
	*httptest.Server
	calls atomic.Int32
	fail  string
}

func newEngineServer(t *testing.T, fail string) *engineServer {
	t.Helper()
	s := &engineServer{fail: fail}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if s.fail != "" && strings.HasPrefix(r.URL.Path, s.fail) {
			http.Error(w, "quota exceeded", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *engineServer) targets() []Target {
	return []Target{
		NewGoogle(s.Client(), s.URL),
		NewBing(s.Client(), s.URL),
		NewBaidu(s.Client(), s.URL),
	}
}

func allEnabled() settings.AdvancedConfig {
	return settings.AdvancedConfig{
		EnableAutoPush:   true,
		EnableGooglePush: true,
		GoogleAPIKey:     "google-key",
		EnableBingPush:   true,
		BingAPIKey:       "bing-key",
		EnableBaiduPush:  true,
		BaiduAPIKey:      "baidu-key",
		SiteURL:          "https://example.com/",
	}
}

func TestDispatchAutoPushDisabled(t *testing.T) {
	server := newEngineServer(t, "")
	d := NewDispatcher(server.targets())

	cfg := allEnabled()
	cfg.EnableAutoPush = false
	summary := d.Dispatch(context.Background(), "https://example.com/a", "https://example.com/sitemap.xml", cfg)

	assert.Equal(t, vo.DispatchStateSkipped, summary.State)
	assert.Equal(t, ReasonAutoPushDisabled, summary.Reason)
	assert.Empty(t, summary.Results)
	assert.NotEmpty(t, summary.ID)
	assert.EqualValues(t, 0, server.calls.Load())
}

func TestDispatchFailureIsolation(t *testing.T) {
	server := newEngineServer(t, "/webmaster/api.svc")
	d := NewDispatcher(server.targets())

	summary := d.Dispatch(context.Background(), "https://example.com/a", "", allEnabled())

	assert.Equal(t, vo.DispatchStateCompleted, summary.State)
	require.Len(t, summary.Results, 3, spew.Sdump(summary))
	assert.Equal(t, 2, summary.Succeeded())
	assert.Equal(t, 1, summary.Failed())

	for _, name := range []string{"google", "baidu"} {
		r, ok := summary.Result(name, vo.SubmissionKindURL)
		require.True(t, ok, name)
		assert.True(t, r.Attempted, name)
		assert.True(t, r.Succeeded, name)
	}
	bing, ok := summary.Result("bing", vo.SubmissionKindURL)
	require.True(t, ok)
	assert.True(t, bing.Attempted)
	assert.False(t, bing.Succeeded)
	assert.Equal(t, http.StatusInternalServerError, bing.StatusCode)
	assert.Contains(t, bing.Reason, "quota exceeded")
	assert.EqualValues(t, 3, server.calls.Load())
}

func TestDispatchSitemap(t *testing.T) {
	server := newEngineServer(t, "")
	d := NewDispatcher(server.targets())

	summary := d.Dispatch(context.Background(), "https://example.com/a", "https://example.com/sitemap.xml", allEnabled())

	require.Len(t, summary.Results, 6)
	assert.Equal(t, 6, summary.Succeeded())
	var order []string
	for _, r := range summary.Results {
		order = append(order, r.Target+":"+string(r.Kind))
	}
	assert.Equal(t, []string{
		"google:url", "google:sitemap",
		"bing:url", "bing:sitemap",
		"baidu:url", "baidu:sitemap",
	}, order)
}

func TestDispatchSitemapOnly(t *testing.T) {
	server := newEngineServer(t, "")
	d := NewDispatcher(server.targets())

	summary := d.Dispatch(context.Background(), "", "https://example.com/sitemap.xml", allEnabled())

	assert.Equal(t, 3, summary.Succeeded())
	assert.Equal(t, 0, summary.Failed())
	r, ok := summary.Result("google", vo.SubmissionKindURL)
	require.True(t, ok)
	assert.False(t, r.Attempted)
	assert.Equal(t, ReasonNoURL, r.Reason)
	assert.EqualValues(t, 3, server.calls.Load())
}

func TestDispatchSkippedTargets(t *testing.T) {
	server := newEngineServer(t, "")
	d := NewDispatcher(server.targets())

	cfg := allEnabled()
	cfg.EnableGooglePush = false
	cfg.BingAPIKey = ""
	summary := d.Dispatch(context.Background(), "https://example.com/a", "", cfg)

	google, _ := summary.Result("google", vo.SubmissionKindURL)
	assert.Equal(t, vo.PushResult{Target: "google", Kind: vo.SubmissionKindURL, Reason: ReasonDisabled}, google)
	bing, _ := summary.Result("bing", vo.SubmissionKindURL)
	assert.False(t, bing.Attempted)
	assert.Equal(t, "api key not configured", bing.Reason)
	baidu, _ := summary.Result("baidu", vo.SubmissionKindURL)
	assert.True(t, baidu.Succeeded)
	assert.EqualValues(t, 1, server.calls.Load())
}

type stubTarget struct {
	name   string
	submit func(ctx context.Context) error
}

func (s stubTarget) Name() string { return s.name }

func (s stubTarget) Credentials(settings.AdvancedConfig) (bool, string) { return true, "key" }

func (s stubTarget) SubmitURL(ctx context.Context, _, _, _ string) error { return s.submit(ctx) }

func (s stubTarget) SubmitSitemap(ctx context.Context, _, _, _ string) error { return s.submit(ctx) }

func TestDispatchPanicAndTimeout(t *testing.T) {
	targets := []Target{
		stubTarget{name: "panics", submit: func(context.Context) error { panic("boom") }},
		stubTarget{name: "slow", submit: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
		stubTarget{name: "ok", submit: func(context.Context) error { return nil }},
	}
	d := NewDispatcher(targets, WithTimeout(20*time.Millisecond))

	summary := d.Dispatch(context.Background(), "https://example.com/a", "", settings.AdvancedConfig{EnableAutoPush: true})

	panics, _ := summary.Result("panics", vo.SubmissionKindURL)
	assert.False(t, panics.Succeeded)
	assert.Equal(t, "target panicked: boom", panics.Reason)
	slow, _ := summary.Result("slow", vo.SubmissionKindURL)
	assert.False(t, slow.Succeeded)
	assert.Contains(t, slow.Reason, "deadline exceeded")
	ok, _ := summary.Result("ok", vo.SubmissionKindURL)
	assert.True(t, ok.Succeeded)
}

type brokenCredentials struct{ stubTarget }

func (brokenCredentials) Credentials(settings.AdvancedConfig) (bool, string) { panic("no config") }

type brokenName struct{ stubTarget }

func (brokenName) Name() string { panic("no name") }

func TestDispatchTargetPanicsOutsideSubmit(t *testing.T) {
	ok := stubTarget{name: "ok", submit: func(context.Context) error { return nil }}
	d := NewDispatcher([]Target{
		brokenCredentials{stubTarget{name: "credentials"}},
		brokenName{},
		ok,
	})

	summary := d.Dispatch(context.Background(), "https://example.com/a", "https://example.com/sitemap.xml",
		settings.AdvancedConfig{EnableAutoPush: true})

	require.Len(t, summary.Results, 6)
	for _, kind := range []vo.SubmissionKind{vo.SubmissionKindURL, vo.SubmissionKindSitemap} {
		credentials, found := summary.Result("credentials", kind)
		require.True(t, found)
		assert.True(t, credentials.Attempted)
		assert.False(t, credentials.Succeeded)
		assert.Equal(t, "target panicked: no config", credentials.Reason)

		unnamed, found := summary.Result("target-1", kind)
		require.True(t, found)
		assert.Equal(t, "target panicked: no name", unnamed.Reason)

		fine, _ := summary.Result("ok", kind)
		assert.True(t, fine.Succeeded)
	}
	assert.Equal(t, 4, summary.Failed())
}

func TestDispatchObservability(t *testing.T) {
	server := newEngineServer(t, "/urls")
	reg := prometheus.NewRegistry()
	core, logs := observer.New(zapcore.InfoLevel)

	var (
		mu       sync.Mutex
		observed []vo.PushResult
		ids      = map[string]bool{}
	)
	d := NewDispatcher(server.targets(),
		WithRegisterer(reg),
		WithLogger(zap.New(core)),
		WithObserver(func(id string, r vo.PushResult) {
			mu.Lock()
			defer mu.Unlock()
			ids[id] = true
			observed = append(observed, r)
		}),
	)

	cfg := allEnabled()
	cfg.EnableGooglePush = false
	summary := d.Dispatch(context.Background(), "https://example.com/a", "", cfg)

	assert.Len(t, observed, 3)
	assert.Equal(t, map[string]bool{summary.ID: true}, ids)
	assert.InDelta(t, 1, testutil.ToFloat64(d.metrics.results.WithLabelValues("google", "url", outcomeSkipped)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(d.metrics.results.WithLabelValues("bing", "url", outcomeSucceeded)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(d.metrics.results.WithLabelValues("baidu", "url", outcomeFailed)), 0)
	assert.Equal(t, 1, logs.FilterMessage("push failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("dispatch completed").Len())

	count, err := testutil.GatherAndCount(reg, "seo_push_results_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

type staticGetter struct {
	settings.Static
	reads atomic.Int32
}

func (g *staticGetter) AdvancedConfig(ctx context.Context) settings.AdvancedConfig {
	g.reads.Add(1)
	return g.Static.AdvancedConfig(ctx)
}

func TestDispatchConfig(t *testing.T) {
	server := newEngineServer(t, "")
	d := NewDispatcher(server.targets())
	getter := &staticGetter{Static: settings.Static{Advanced: allEnabled()}}

	_ = d.DispatchConfig(context.Background(), getter, "https://example.com/a", "")
	summary := d.DispatchConfig(context.Background(), getter, "https://example.com/a", "")

	assert.Equal(t, 3, summary.Succeeded())
	assert.EqualValues(t, 2, getter.reads.Load())
}
