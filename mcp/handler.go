package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/foomo/contentserver-seo/detect"
	"github.com/foomo/contentserver-seo/scrape"
	"github.com/foomo/contentserver-seo/seo"
	"github.com/foomo/contentserver-seo/service"
	"github.com/foomo/contentserver-seo/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const Version = "0.1.0"

type ScrapeRequest struct {
	URL      string `json:"url"`      // The URL to scrape
	Selector string `json:"selector"` // CSS selector to extract content
}

type ScrapeResponse struct {
	Markdown  string              `json:"markdown"`            // The extracted content in markdown format
	Type      detect.Type         `json:"type"`                // Detected content type
	Questions []vo.QuestionAnswer `json:"questions,omitempty"` // Extracted FAQ pairs
	Steps     []string            `json:"steps,omitempty"`     // Extracted how-to steps
}

type RenderSeoRequest struct {
	Path string `json:"path"` // The content path to render the head for
}

type PushURLRequest struct {
	URL        string `json:"url"`                  // The changed page
	SitemapURL string `json:"sitemapUrl,omitempty"` // Optional sitemap to resubmit
}

type PushSitemapRequest struct {
	SitemapURL string `json:"sitemapUrl"`
}

type PushResponse struct {
	Message string             `json:"message"`
	Summary vo.DispatchSummary `json:"summary"`
}

// NewServer creates a new MCP server with the scrape, renderSeo and push tools
func NewServer(l *zap.Logger, client *http.Client, serviceInstance service.Service) *server.MCPServer {
	if l == nil {
		l = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	s := server.NewMCPServer(
		"Content SEO MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape",
		mcp.WithDescription("Scrape a webpage, convert it to markdown and extract FAQ or how-to structure"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the webpage to scrape"),
		),
		mcp.WithString("selector",
			mcp.Description("CSS selector of the content element (e.g., '#content', 'article'), defaults to body"),
		),
	)
	s.AddTool(scrapeTool, mcp.NewTypedToolHandler(getScrapeHandler(client)))

	// the content tools need a service
	if serviceInstance == nil {
		return s
	}

	renderSeoTool := mcp.NewTool("renderSeo",
		mcp.WithDescription("Render the SEO head fragments (canonical, Open Graph, Twitter, JSON-LD) for a content path"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("The content path, e.g. /posts/hello"),
		),
	)
	s.AddTool(renderSeoTool, mcp.NewTypedToolHandler(getRenderSeoHandler(serviceInstance)))

	pushURLTool := mcp.NewTool("pushUrl",
		mcp.WithDescription("Notify the enabled search engines about a changed page"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute URL of the changed page"),
		),
		mcp.WithString("sitemapUrl",
			mcp.Description("Absolute URL of a sitemap to resubmit"),
		),
	)
	s.AddTool(pushURLTool, mcp.NewTypedToolHandler(getPushURLHandler(l, serviceInstance)))

	pushSitemapTool := mcp.NewTool("pushSitemap",
		mcp.WithDescription("Resubmit a sitemap to the enabled search engines"),
		mcp.WithString("sitemapUrl",
			mcp.Required(),
			mcp.Description("Absolute URL of the sitemap"),
		),
	)
	s.AddTool(pushSitemapTool, mcp.NewTypedToolHandler(getPushSitemapHandler(l, serviceInstance)))

	return s
}

func getScrapeHandler(client *http.Client) func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}

		doc, err := scrape.Load(ctx, client, args.URL)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scrape content: %v", err)), nil
		}
		markdown, err := scrape.Markdown(doc, args.Selector)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scrape content: %v", err)), nil
		}
		raw, err := scrape.PlainText(doc, args.Selector)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scrape content: %v", err)), nil
		}

		response := ScrapeResponse{
			Markdown: string(markdown),
			Type:     detect.Detect(raw, detect.ModeAuto),
		}
		switch response.Type {
		case detect.TypeFAQ:
			response.Questions = seo.ExtractQuestions(raw)
		case detect.TypeHowTo:
			response.Steps = seo.ExtractSteps(raw)
		}
		return jsonResult(response)
	}
}

func getRenderSeoHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args RenderSeoRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args RenderSeoRequest) (*mcp.CallToolResult, error) {
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		result, err := serviceInstance.RenderSeo(ctx, args.Path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render seo: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func getPushURLHandler(l *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PushURLRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PushURLRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}

		l.Info("push requested", zap.String("url", args.URL), zap.String("remote", remoteAddr(ctx)))
		summary, err := serviceInstance.Push(ctx, args.URL, args.SitemapURL)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to push url: %v", err)), nil
		}
		return jsonResult(PushResponse{Message: pushMessage(summary), Summary: summary})
	}
}

func getPushSitemapHandler(l *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PushSitemapRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PushSitemapRequest) (*mcp.CallToolResult, error) {
		if args.SitemapURL == "" {
			return mcp.NewToolResultError("sitemapUrl is required"), nil
		}

		l.Info("sitemap push requested", zap.String("sitemap", args.SitemapURL), zap.String("remote", remoteAddr(ctx)))
		summary, err := serviceInstance.PushSitemap(ctx, args.SitemapURL)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to push sitemap: %v", err)), nil
		}
		return jsonResult(PushResponse{Message: pushMessage(summary), Summary: summary})
	}
}

// remoteAddr names the caller of a tool, stdio sessions have no address.
func remoteAddr(ctx context.Context) string {
	if req, ok := httpRequestFromContext(ctx); ok {
		return req.RemoteAddr
	}
	return "stdio"
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

// pushMessage is a one line account of a dispatch.
func pushMessage(summary vo.DispatchSummary) string {
	if summary.State == vo.DispatchStateSkipped {
		return "push skipped: " + summary.Reason
	}
	succeeded, failed := summary.Succeeded(), summary.Failed()
	if succeeded+failed == 0 {
		return "push completed: no search engine is enabled and configured"
	}
	return fmt.Sprintf("push completed: %d accepted, %d failed", succeeded, failed)
}
