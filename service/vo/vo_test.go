package vo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchSummaryCounts(t *testing.T) {
	summary := DispatchSummary{
		State: DispatchStateCompleted,
		Results: []PushResult{
			{Target: "google", Kind: SubmissionKindURL, Attempted: true, Succeeded: true},
			{Target: "google", Kind: SubmissionKindSitemap, Attempted: true, Succeeded: true},
			{Target: "bing", Kind: SubmissionKindURL, Attempted: true, Reason: "status 500"},
			{Target: "baidu", Kind: SubmissionKindURL, Reason: "disabled"},
		},
	}

	assert.Equal(t, 2, summary.Succeeded())
	assert.Equal(t, 1, summary.Failed())

	r, ok := summary.Result("bing", SubmissionKindURL)
	require.True(t, ok)
	assert.Equal(t, "status 500", r.Reason)

	_, ok = summary.Result("bing", SubmissionKindSitemap)
	assert.False(t, ok)
}

func TestSeoDataJSON(t *testing.T) {
	data := SeoData{
		Title:    "Italian Recipes",
		Keywords: "Marketing,SEO",
	}

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jsonData, &decoded))
	assert.Equal(t, "Italian Recipes", decoded["title"])
	// zero values are still present so consumers never see a missing key
	assert.Equal(t, "", decoded["rawContent"])
	assert.Equal(t, "Marketing,SEO", decoded["keywords"])
}
