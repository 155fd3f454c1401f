// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/capsync/pkg/types"
)

func TestRender_TwoHighlights(t *testing.T) {
	data := &types.ItemAnnotationData{
		ItemKey:   "ITEM1",
		ItemTitle: "Paper",
		Annotations: []types.FormattedAnnotation{
			{Text: "A", Color: "#ffd400", ColorEmoji: ColorEmoji("#ffd400"), SortIndex: "00001|001", PageIndex: -1},
			{Text: "B", Color: "#5fb236", ColorEmoji: ColorEmoji("#5fb236"), SortIndex: "00002|001", PageIndex: -1},
		},
	}
	cfg := types.FormatConfig{IncludePageNumbers: false, IncludeTags: true, UseColorEmoji: true}

	md := Render(data, cfg)

	assert.True(t, strings.HasPrefix(md, "## Annotations\n"))

	yellowQuote := strings.Index(md, "> \U0001F7E1 A")
	greenQuote := strings.Index(md, "> \U0001F7E2 B")
	require.NotEqual(t, -1, yellowQuote)
	require.NotEqual(t, -1, greenQuote)
	assert.Less(t, yellowQuote, greenQuote)

	// Each annotation block is rule-terminated.
	assert.Equal(t, 2, strings.Count(md, "---"))
	assert.True(t, strings.HasSuffix(md, "---"))

	assert.NotContains(t, md, "Tags:")
	assert.NotContains(t, md, "(p.")
}

func TestRender_MetadataBlock(t *testing.T) {
	data := &types.ItemAnnotationData{
		ItemCreators: "Ada Lovelace, Charles Babbage",
		ItemDate:     "1843",
		ItemDOI:      "10.1000/analytical-engine",
		Annotations: []types.FormattedAnnotation{
			{Text: "notes", ColorEmoji: "\U0001F7E1", PageIndex: -1},
		},
	}

	md := Render(data, types.DefaultFormatConfig())

	assert.Contains(t, md, "**Authors:** Ada Lovelace, Charles Babbage")
	assert.Contains(t, md, "**Date:** 1843")
	assert.Contains(t, md, "**DOI:** 10.1000/analytical-engine")

	// Metadata precedes the first quote, separated by a rule.
	assert.Less(t, strings.Index(md, "**Authors:**"), strings.Index(md, "---"))
	assert.Less(t, strings.Index(md, "---"), strings.Index(md, "> "))
}

func TestRender_NoMetadata(t *testing.T) {
	data := &types.ItemAnnotationData{
		Annotations: []types.FormattedAnnotation{
			{Text: "bare", ColorEmoji: "\U0001F7E1", PageIndex: -1},
		},
	}

	md := Render(data, types.DefaultFormatConfig())
	assert.NotContains(t, md, "**Authors:**")
	// Only the annotation's terminating rule remains.
	assert.Equal(t, 1, strings.Count(md, "---"))
}

func TestRenderAnnotation_PageMarkerAndDeepLink(t *testing.T) {
	a := types.FormattedAnnotation{
		Text:       "passage",
		ColorEmoji: "\U0001F7E1",
		PageLabel:  "12",
		PageIndex:  11,
		DeepLink:   "zotero://open-pdf/library/items/ATT1?page=12&annotation=ANN1",
	}

	lines := renderAnnotation(a, types.DefaultFormatConfig())
	require.NotEmpty(t, lines)
	assert.Equal(t,
		"> \U0001F7E1 passage [*(p.12)*](zotero://open-pdf/library/items/ATT1?page=12&annotation=ANN1)",
		lines[0])
}

func TestRenderAnnotation_PageMarkerWithoutLink(t *testing.T) {
	a := types.FormattedAnnotation{Text: "passage", ColorEmoji: "\U0001F7E1", PageLabel: "iv"}

	lines := renderAnnotation(a, types.DefaultFormatConfig())
	require.NotEmpty(t, lines)
	assert.Equal(t, "> \U0001F7E1 passage *(p.iv)*", lines[0])
}

func TestRenderAnnotation_MultilineQuote(t *testing.T) {
	a := types.FormattedAnnotation{
		Text:       "first line\nsecond line",
		ColorEmoji: "\U0001F7E2",
		Comment:    "my thought",
	}
	cfg := types.FormatConfig{UseColorEmoji: true}

	lines := renderAnnotation(a, cfg)
	require.Len(t, lines, 3)
	assert.Equal(t, "> \U0001F7E2 first line\n> second line", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "my thought", lines[2])
}

func TestRenderAnnotation_Image(t *testing.T) {
	a := types.FormattedAnnotation{
		IsImage:    true,
		ColorEmoji: "\U0001F535",
		PageLabel:  "3",
		DeepLink:   "zotero://open-pdf/library/items/ATT1?page=3&annotation=IMG1",
		Comment:    "interesting figure",
	}

	lines := renderAnnotation(a, types.DefaultFormatConfig())
	require.Len(t, lines, 3)
	assert.Equal(t,
		"> \U0001F535 \U0001F4F7 Figure annotation [*(p.3)*](zotero://open-pdf/library/items/ATT1?page=3&annotation=IMG1)",
		lines[0])
	assert.Equal(t, "interesting figure", lines[2])
}

func TestRenderAnnotation_CommentOnly(t *testing.T) {
	a := types.FormattedAnnotation{Comment: "standalone note"}

	lines := renderAnnotation(a, types.FormatConfig{})
	require.Len(t, lines, 1)
	assert.Equal(t, "standalone note", lines[0])
}

func TestRenderAnnotation_Tags(t *testing.T) {
	a := types.FormattedAnnotation{
		Text:       "tagged",
		ColorEmoji: "\U0001F7E1",
		Tags:       []string{"methods", "stats"},
	}

	lines := renderAnnotation(a, types.DefaultFormatConfig())
	assert.Equal(t, "Tags: #methods #stats", lines[len(lines)-1])

	lines = renderAnnotation(a, types.FormatConfig{UseColorEmoji: true})
	assert.NotContains(t, strings.Join(lines, "\n"), "Tags:")
}

func TestRender_DisabledEmoji(t *testing.T) {
	data := &types.ItemAnnotationData{
		Annotations: []types.FormattedAnnotation{
			{Text: "plain", ColorEmoji: "\U0001F7E1", PageIndex: -1},
		},
	}
	cfg := types.FormatConfig{IncludePageNumbers: true, IncludeTags: true}

	md := Render(data, cfg)
	assert.Contains(t, md, "> plain")
	assert.NotContains(t, md, "\U0001F7E1")
}
