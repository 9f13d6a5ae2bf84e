package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foomo/contentserver-seo/service/vo"
	"github.com/foomo/contentserver-seo/settings"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds every single submission.
const DefaultTimeout = 10 * time.Second

const (
	ReasonAutoPushDisabled = "auto push disabled"
	ReasonDisabled         = "disabled"
	ReasonNoURL            = "no url given"
)

// Observer is called once for every result of a dispatch, including the
// skipped ones. It may be called concurrently.
type Observer func(dispatchID string, result vo.PushResult)

type Dispatcher struct {
	l         *zap.Logger
	targets   []Target
	timeout   time.Duration
	reg       prometheus.Registerer
	metrics   *metrics
	observers []Observer
}

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.l = l
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithRegisterer registers the push metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(d *Dispatcher) {
		d.reg = reg
	}
}

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

// NewDispatcher fans out to targets in the given order.
func NewDispatcher(targets []Target, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		l:       zap.NewNop(),
		targets: targets,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.metrics = newMetrics(d.reg)
	return d
}

// AddObserver registers o after construction. It must not be called while
// dispatches are running.
func (d *Dispatcher) AddObserver(o Observer) {
	if o != nil {
		d.observers = append(d.observers, o)
	}
}

// DispatchConfig reads a fresh advanced config from getter and dispatches.
func (d *Dispatcher) DispatchConfig(ctx context.Context, getter settings.Getter, pageURL, sitemapURL string) vo.DispatchSummary {
	return d.Dispatch(ctx, pageURL, sitemapURL, getter.AdvancedConfig(ctx))
}

// Dispatch submits pageURL and, when given, sitemapURL to every target. It
// never fails: every problem ends up as a result in the summary. An empty
// pageURL only submits the sitemap.
func (d *Dispatcher) Dispatch(ctx context.Context, pageURL, sitemapURL string, cfg settings.AdvancedConfig) vo.DispatchSummary {
	summary := vo.DispatchSummary{
		ID:         uuid.NewString(),
		URL:        pageURL,
		SitemapURL: sitemapURL,
		Results:    []vo.PushResult{},
		Started:    time.Now(),
	}
	l := d.l.With(zap.String("dispatch", summary.ID), zap.String("url", pageURL), zap.String("sitemap", sitemapURL))

	if !cfg.EnableAutoPush {
		summary.State = vo.DispatchStateSkipped
		summary.Reason = ReasonAutoPushDisabled
		l.Info("auto push disabled, skipping dispatch")
		return summary
	}

	site := siteURL(cfg.SiteURL, pageURL, sitemapURL)
	perTarget := make([][]vo.PushResult, len(d.targets))
	var g errgroup.Group
	for i, target := range d.targets {
		g.Go(func() error {
			perTarget[i] = d.dispatchTarget(ctx, l, summary.ID, i, target, cfg, site, pageURL, sitemapURL)
			return nil
		})
	}
	_ = g.Wait()

	for _, results := range perTarget {
		summary.Results = append(summary.Results, results...)
	}
	summary.State = vo.DispatchStateCompleted
	l.Info("dispatch completed",
		zap.Int("succeeded", summary.Succeeded()),
		zap.Int("failed", summary.Failed()),
		zap.Duration("duration", time.Since(summary.Started)),
	)
	return summary
}

// dispatchTarget never panics. A target failing outside a submission gets a
// failed result per kind, named by its position when Name panicked.
func (d *Dispatcher) dispatchTarget(
	ctx context.Context,
	l *zap.Logger,
	dispatchID string,
	index int,
	target Target,
	cfg settings.AdvancedConfig,
	site, pageURL, sitemapURL string,
) (results []vo.PushResult) {
	kinds := []vo.SubmissionKind{vo.SubmissionKindURL}
	if sitemapURL != "" {
		kinds = append(kinds, vo.SubmissionKindSitemap)
	}

	name := fmt.Sprintf("target-%d", index)
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("target panicked: %v", r)
			results = make([]vo.PushResult, 0, len(kinds))
			for _, kind := range kinds {
				results = append(results, d.record(l, dispatchID, vo.PushResult{Target: name, Kind: kind, Attempted: true, Reason: reason}))
			}
		}
	}()
	name = target.Name()

	enabled, apiKey := target.Credentials(cfg)
	var reason string
	switch {
	case !enabled:
		reason = ReasonDisabled
	case apiKey == "":
		reason = ErrNotConfigured.Error()
	}
	if reason != "" {
		l.Debug("skipping target", zap.String("target", name), zap.String("reason", reason))
		results = make([]vo.PushResult, 0, len(kinds))
		for _, kind := range kinds {
			results = append(results, d.record(l, dispatchID, vo.PushResult{Target: name, Kind: kind, Reason: reason}))
		}
		return results
	}

	results = make([]vo.PushResult, 0, len(kinds))
	if pageURL == "" {
		results = append(results, d.record(l, dispatchID, vo.PushResult{Target: name, Kind: vo.SubmissionKindURL, Reason: ReasonNoURL}))
	} else {
		results = append(results, d.submit(ctx, l, dispatchID, name, vo.SubmissionKindURL, func(ctx context.Context) error {
			return target.SubmitURL(ctx, apiKey, site, pageURL)
		}))
	}
	if sitemapURL != "" {
		results = append(results, d.submit(ctx, l, dispatchID, name, vo.SubmissionKindSitemap, func(ctx context.Context) error {
			return target.SubmitSitemap(ctx, apiKey, site, sitemapURL)
		}))
	}
	return results
}

// submit runs one bounded submission and turns errors and panics into a
// failed result.
func (d *Dispatcher) submit(
	ctx context.Context,
	l *zap.Logger,
	dispatchID, name string,
	kind vo.SubmissionKind,
	fn func(ctx context.Context) error,
) (result vo.PushResult) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	result = vo.PushResult{Target: name, Kind: kind, Attempted: true}
	defer func() {
		if r := recover(); r != nil {
			result.Succeeded = false
			result.Reason = fmt.Sprintf("target panicked: %v", r)
		}
		result.Duration = time.Since(start)
		result = d.record(l, dispatchID, result)
	}()

	if err := fn(ctx); err != nil {
		result.Reason = err.Error()
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			result.StatusCode = statusErr.StatusCode
		}
		return result
	}
	result.Succeeded = true
	return result
}

func (d *Dispatcher) record(l *zap.Logger, dispatchID string, result vo.PushResult) vo.PushResult {
	fields := []zap.Field{
		zap.String("target", result.Target),
		zap.String("kind", string(result.Kind)),
	}
	outcome := outcomeSkipped
	switch {
	case !result.Attempted:
	case result.Succeeded:
		outcome = outcomeSucceeded
		l.Info("push accepted", append(fields, zap.Duration("duration", result.Duration))...)
	default:
		outcome = outcomeFailed
		l.Error("push failed", append(fields, zap.String("reason", result.Reason), zap.Int("status", result.StatusCode))...)
	}

	d.metrics.results.WithLabelValues(result.Target, string(result.Kind), outcome).Inc()
	if result.Attempted {
		d.metrics.duration.WithLabelValues(result.Target).Observe(result.Duration.Seconds())
	}
	for _, o := range d.observers {
		o(dispatchID, result)
	}
	return result
}
