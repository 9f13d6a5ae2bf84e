// Package scrape loads post HTML or published pages and turns them into
// markdown or into plain text with one line per block element.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/foomo/contentserver-seo/service/vo"
	"golang.org/x/net/html"
)

// maxBodySize caps how much of a fetched page is read.
const maxBodySize = 5 << 20

// blockElements start and end a line in plain text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tr": true, "ul": true,
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// Parse reads an HTML fragment or document.
func Parse(doc string) (*goquery.Document, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return d, nil
}

// Load downloads url and parses the response body.
func Load(ctx context.Context, httpClient *http.Client, url string) (*goquery.Document, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download HTML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	d, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return d, nil
}

// Markdown converts the element matched by selector to markdown.
func Markdown(doc *goquery.Document, selector string) (vo.Markdown, error) {
	node, err := selectNode(doc, selector)
	if err != nil {
		return "", err
	}

	markdownBytes, err := htmltomarkdown.ConvertNode(node)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	return vo.Markdown(strings.TrimSpace(string(markdownBytes))), nil
}

// PlainText returns the text of the element matched by selector with one
// line per block element. Items of ordered lists are numbered "1. ", line
// breaks inside text are kept and emphasis is dropped.
func PlainText(doc *goquery.Document, selector string) (string, error) {
	node, err := selectNode(doc, selector)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	writeText(&b, node, "")
	return joinLines(b.String()), nil
}

// HTMLPlainText is PlainText for an HTML string.
func HTMLPlainText(doc string, selector string) (string, error) {
	if strings.TrimSpace(doc) == "" {
		return "", nil
	}
	d, err := Parse(doc)
	if err != nil {
		return "", err
	}
	return PlainText(d, selector)
}

// writeText appends the text of n. prefix starts the first line of a block.
func writeText(b *strings.Builder, n *html.Node, prefix string) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
		b.WriteString(prefix)
	}
	position := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		childPrefix := ""
		if c.Type == html.ElementNode {
			switch {
			case n.Data == "ol" && c.Data == "li":
				position++
				childPrefix = strconv.Itoa(position) + ". "
			case c.Data == "td" || c.Data == "th":
				b.WriteByte(' ')
			}
		}
		writeText(b, c, childPrefix)
	}
	if block {
		b.WriteByte('\n')
	}
}

// joinLines collapses whitespace inside lines and drops empty ones.
func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func selectNode(doc *goquery.Document, selector string) (*html.Node, error) {
	if selector == "" {
		selector = "body"
	}
	selection := doc.Find(selector).First()
	if selection.Length() == 0 {
		return nil, fmt.Errorf("failed to extract node with selector '%s': not found", selector)
	}
	return selection.Nodes[0], nil
}
