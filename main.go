package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/foomo/contentserver-seo/content"
	"github.com/foomo/contentserver-seo/mcp"
	"github.com/foomo/contentserver-seo/push"
	"github.com/foomo/contentserver-seo/seo"
	"github.com/foomo/contentserver-seo/service"
	"github.com/foomo/contentserver-seo/settings"
	"github.com/foomo/contentserver/requests"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	stdio            bool
	httpAddr         string
	endpoint         string
	debug            bool
	contentServerURL string
	baseURL          string
	siteNode         string
	usersNode        string
	tagsNode         string
	dimensions       string
	groups           string
	settingsFile     string
	settingsDB       string
	pageSelector     string
	pushTimeout      time.Duration
}

func main() {
	var cfg config
	// Define command line flags
	flag.BoolVar(&cfg.stdio, "stdio", true, "Run in stdio mode")
	flag.StringVar(&cfg.httpAddr, "http", "", "HTTP server address (e.g., ':8080')")
	flag.StringVar(&cfg.endpoint, "endpoint", "/mcp", "MCP endpoint path in HTTP mode")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.StringVar(&cfg.contentServerURL, "contentserver", "", "Contentserver URL, an in memory store is used when empty")
	flag.StringVar(&cfg.baseURL, "base-url", "", "Public base URL of the site")
	flag.StringVar(&cfg.siteNode, "site-node", "", "Contentserver node id of the site root")
	flag.StringVar(&cfg.usersNode, "users-node", "", "Contentserver node id holding the users")
	flag.StringVar(&cfg.tagsNode, "tags-node", "", "Contentserver node id holding the tags")
	flag.StringVar(&cfg.dimensions, "dimensions", "", "Comma separated contentserver dimensions")
	flag.StringVar(&cfg.groups, "groups", "", "Comma separated contentserver groups")

	flag.StringVar(&cfg.settingsFile, "settings", "", "YAML settings file")
	flag.StringVar(&cfg.settingsDB, "settings-db", "", "SQLite settings database, takes precedence over -settings")
	flag.StringVar(&cfg.pageSelector, "page-selector", "", "CSS selector used when scraping the published page, empty disables the fallback")
	flag.DurationVar(&cfg.pushTimeout, "push-timeout", push.DefaultTimeout, "Timeout for a single search engine submission")
	flag.Parse()

	l, err := newLogger(cfg.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	err = run(cfg, l)
	if err != nil {
		l.Error("server stopped", zap.Error(err))
	}
	_ = l.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run blocks until the server stops. Resources opened here are released
// before it returns.
func run(cfg config, l *zap.Logger) error {
	var fetcher settings.Fetcher
	switch {
	case cfg.settingsDB != "":
		db, err := settings.NewSQLiteFetcher(cfg.settingsDB)
		if err != nil {
			return fmt.Errorf("failed to open settings database %q: %w", cfg.settingsDB, err)
		}
		defer func() { _ = db.Close() }()
		fetcher = db
	case cfg.settingsFile != "":
		fetcher = settings.NewFileFetcher(cfg.settingsFile)
	}
	var getter settings.Getter = settings.Static{}
	if fetcher != nil {
		getter = settings.NewGetter(l.Named("settings"), fetcher)
	}

	httpClient := push.NewHTTPClient(nil)

	var store content.Store
	if cfg.contentServerURL != "" {
		store = content.NewContentServerStore(content.SiteSettings{
			Env: &requests.Env{
				Dimensions: splitList(cfg.dimensions),
				Groups:     splitList(cfg.groups),
			},
			BaseURL:          cfg.baseURL,
			ContentServerURL: cfg.contentServerURL,
			SiteNodeID:       cfg.siteNode,
			UsersNodeID:      cfg.usersNode,
			TagsNodeID:       cfg.tagsNode,
		}, httpClient)
	} else {
		l.Warn("no contentserver configured, using an empty in memory store")
		store = content.NewMemoryStore()
	}

	synthesizerOpts := []seo.Option{seo.WithLogger(l.Named("seo")), seo.WithLocation(time.Local)}
	if cfg.pageSelector != "" {
		synthesizerOpts = append(synthesizerOpts, seo.WithPageFallback(httpClient, cfg.pageSelector))
	}
	processor := seo.NewProcessor(l.Named("seo"), seo.NewSynthesizer(store, getter, synthesizerOpts...))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dispatcher := push.NewDispatcher(
		push.DefaultTargets(httpClient),
		push.WithLogger(l.Named("push")),
		push.WithTimeout(cfg.pushTimeout),
		push.WithRegisterer(reg),
	)

	serviceInstance := service.NewService(l.Named("service"), processor, dispatcher, getter)
	s := mcp.NewServer(l.Named("mcp"), httpClient, serviceInstance)

	if cfg.httpAddr != "" {
		httpServer := mcp.NewMcpHTTPSSEServer(
			l.Named("http"),
			s,
			serviceInstance,
			cfg.endpoint,
			mcp.DefaultSSEServerConfig(),
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		)
		dispatcher.AddObserver(httpServer.GetSSEServer().ObservePush)

		l.Info("starting MCP server", zap.String("address", cfg.httpAddr), zap.String("endpoint", cfg.endpoint))
		if err := http.ListenAndServe(cfg.httpAddr, httpServer); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	// Start the stdio server
	if cfg.stdio {
		l.Info("starting MCP server in stdio mode")
	} else {
		l.Info("starting MCP server in stdio mode (default)")
	}
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// newLogger writes to stderr, stdout belongs to the stdio transport.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func splitList(value string) []string {
	var list []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}
