package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/foomo/contentserver-seo/service"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// httpRequestKey is a custom context key for storing the original HTTP request
type httpRequestKey struct{}

// withHTTPRequest adds the original HTTP request to the context
func withHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

// httpRequestFromContext extracts the original HTTP request from the context
func httpRequestFromContext(ctx context.Context) (*http.Request, bool) {
	req, ok := ctx.Value(httpRequestKey{}).(*http.Request)
	return req, ok
}

// httpContextFunc extracts the original HTTP request and adds it to the context
func httpContextFunc(ctx context.Context, r *http.Request) context.Context {
	return withHTTPRequest(ctx, r)
}

// NewMcpHTTPServer creates a new MCP HTTP server with traditional MCP endpoints
func NewMcpHTTPServer(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(endpoint),
		server.WithHTTPContextFunc(httpContextFunc),
	)
}

// NewMcpHTTPSSEServer serves the MCP endpoint, the push trigger, the SSE
// push stream and, when metricsHandler is set, /metrics.
func NewMcpHTTPSSEServer(logger *zap.Logger, s *server.MCPServer, serviceInstance service.Service, endpoint string, config *SSEServerConfig, metricsHandler http.Handler) *McpHTTPSSEServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	sseServer := NewMCPSSEServer(logger, serviceInstance, config)

	mux := http.NewServeMux()
	mux.Handle(endpoint, NewMcpHTTPServer(s, endpoint))

	mux.Handle(endpoint+"/push", &pushHandler{logger: logger, service: serviceInstance})
	mux.HandleFunc(endpoint+"/sse", sseServer.HandleSSE)
	mux.HandleFunc(endpoint+"/sse/push", sseServer.HandlePushSSE)
	mux.HandleFunc(endpoint+"/sse/clients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"connectedClients": len(sseServer.GetConnectedClients()),
			"clients":          sseServer.GetConnectedClients(),
		})
	})
	mux.HandleFunc(endpoint+"/sse/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sseServer.GetStats())
	})
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	return &McpHTTPSSEServer{
		mux:       mux,
		sseServer: sseServer,
	}
}

// McpHTTPSSEServer combines MCP HTTP server with SSE capabilities
type McpHTTPSSEServer struct {
	mux       *http.ServeMux
	sseServer *MCPSSEServer
}

// ServeHTTP implements http.Handler
func (s *McpHTTPSSEServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// GetSSEServer returns the underlying SSE server for direct access
func (s *McpHTTPSSEServer) GetSSEServer() *MCPSSEServer {
	return s.sseServer
}

// pushHandler answers POST ?url=&sitemapUrl= with the dispatch summary. A
// request with only sitemapUrl resubmits the sitemap.
type pushHandler struct {
	logger  *zap.Logger
	service service.Service
}

func (h *pushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}
	if h.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "push service not available"})
		return
	}

	query := r.URL.Query()
	request := PushURLRequest{URL: query.Get("url"), SitemapURL: query.Get("sitemapUrl")}
	if request.URL == "" && request.SitemapURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "url or sitemapUrl is required"})
		return
	}

	var err error
	var response PushResponse
	if request.URL == "" {
		response.Summary, err = h.service.PushSitemap(r.Context(), request.SitemapURL)
	} else {
		response.Summary, err = h.service.Push(r.Context(), request.URL, request.SitemapURL)
	}
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	case err != nil:
		h.logger.Error("failed to push", zap.String("url", request.URL), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	response.Message = pushMessage(response.Summary)
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
