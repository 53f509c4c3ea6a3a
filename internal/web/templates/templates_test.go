package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/feedmap/internal/core"
	"github.com/JonMunkholm/feedmap/internal/mapping"
)

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	err := ErrorAlert(`<script>x</script>`, "", "SRC001").Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Code: SRC001")
	assert.NotContains(t, out, "alert-action")
}

func TestPreviewTable_Collection(t *testing.T) {
	resp := &core.PreviewResponse{
		Result: &mapping.Result{
			Mode: mapping.TargetCollection,
			Records: []mapping.ResolvedRecord{
				{EntityKey: "h1", DisplayName: "Harbor & Co", Fields: map[string]any{"Region": "West", "Occupancy": 0.8}},
				{EntityKey: "h2", DisplayName: "Bay", Fields: map[string]any{"Region": nil}},
			},
		},
		Warnings: []string{"1 of 2 records have no entity key"},
	}

	var buf bytes.Buffer
	require.NoError(t, PreviewTable(resp).Render(context.Background(), &buf))
	out := buf.String()

	assert.Contains(t, out, "Harbor &amp; Co")
	assert.Contains(t, out, "<li>1 of 2 records have no entity key</li>")
	assert.Less(t, strings.Index(out, "<th>Occupancy</th>"), strings.Index(out, "<th>Region</th>"))
	assert.Contains(t, out, "<td>0.8</td>")
	assert.Equal(t, 2, strings.Count(out, `class="absent"`))
}

func TestPreviewTable_Single(t *testing.T) {
	resp := &core.PreviewResponse{
		Result: &mapping.Result{
			Mode:   mapping.TargetSingle,
			Single: map[string]any{"Rooms Sold": float64(7)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, PreviewTable(resp).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "<td>Rooms Sold</td><td>7</td>")
	assert.NotContains(t, buf.String(), "preview-warnings")
}

func TestPreviewTable_NoResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PreviewTable(&core.PreviewResponse{Warnings: []string{"document is empty"}}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Nothing to preview")
}
