package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, doc string) string {
	t.Helper()
	d, err := Parse(doc)
	require.NoError(t, err)
	md, err := Markdown(d, "")
	require.NoError(t, err)
	return string(md)
}

func TestMarkdownOrderedList(t *testing.T) {
	md := parse(t, "<h2>Install</h2><ol><li>Download</li><li>Run</li></ol>")
	assert.Contains(t, md, "1. Download")
	assert.Contains(t, md, "2. Run")
}

func TestMarkdownSelector(t *testing.T) {
	d, err := Parse(`<html><body><nav>Menu</nav><article id="content"><p>Body text</p></article></body></html>`)
	require.NoError(t, err)

	md, err := Markdown(d, "#content")
	require.NoError(t, err)
	assert.Equal(t, "Body text", string(md))

	_, err = Markdown(d, ".missing")
	assert.Error(t, err)
}

func TestHTMLPlainText(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "paragraphs",
			doc:  "<p>Q: What is SEO?</p><p>A: Search engine optimization.</p>",
			want: "Q: What is SEO?\nA: Search engine optimization.",
		},
		{
			name: "numbered paragraphs",
			doc:  "<p>How to install</p><p>1. Download</p><p>2. Run</p>",
			want: "How to install\n1. Download\n2. Run",
		},
		{
			name: "bold markers",
			doc:  "<p><strong>Q:</strong> What is SEO?</p><p><strong>A:</strong> Opt.</p>",
			want: "Q: What is SEO?\nA: Opt.",
		},
		{
			name: "plain text keeps lines",
			doc:  "Q: What is SEO?\nA: Search engine optimization.",
			want: "Q: What is SEO?\nA: Search engine optimization.",
		},
		{
			name: "ordered list",
			doc:  "<h2>Install</h2><ol><li>Download</li><li>Run</li></ol><ul><li>Note</li></ul>",
			want: "Install\n1. Download\n2. Run\nNote",
		},
		{
			name: "line breaks and inline",
			doc:  "<div>Step 1: open<br>Step 2:   <em>close</em></div><script>var x = 1;</script>",
			want: "Step 1: open\nStep 2: close",
		},
		{
			name: "empty",
			doc:  "   ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTMLPlainText(tt.doc, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlainTextSelector(t *testing.T) {
	d, err := Parse(`<html><body><nav>Menu</nav><article><p>Body</p><p>text</p></article></body></html>`)
	require.NoError(t, err)

	text, err := PlainText(d, "article")
	require.NoError(t, err)
	assert.Equal(t, "Body\ntext", text)

	_, err = PlainText(d, ".missing")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/post" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><main><p>Step 1: open</p></main></body></html>`))
	}))
	defer server.Close()

	d, err := Load(context.Background(), server.Client(), server.URL+"/post")
	require.NoError(t, err)
	md, err := Markdown(d, "main")
	require.NoError(t, err)
	assert.Equal(t, "Step 1: open", string(md))

	_, err = Load(context.Background(), server.Client(), server.URL+"/missing")
	assert.Error(t, err)
}
