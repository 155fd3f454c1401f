// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotations

import (
	"fmt"
	"strings"

	"github.com/pdiddy/capsync/pkg/types"
)

// Render converts an aggregated annotation set into a single markdown
// document. Layout: a fixed heading, an optional metadata block terminated
// by a horizontal rule, then one rule-terminated block per annotation in
// sequence order. Highlighted text renders as a quote with the color
// marker on the first line; comments follow as plain paragraphs.
func Render(data *types.ItemAnnotationData, cfg types.FormatConfig) string {
	lines := []string{"## Annotations", ""}

	if data.ItemCreators != "" {
		lines = append(lines, "**Authors:** "+data.ItemCreators)
	}
	if data.ItemDate != "" {
		lines = append(lines, "**Date:** "+data.ItemDate)
	}
	if data.ItemDOI != "" {
		lines = append(lines, "**DOI:** "+data.ItemDOI)
	}
	if data.ItemCreators != "" || data.ItemDate != "" || data.ItemDOI != "" {
		lines = append(lines, "", "---", "")
	}

	for _, a := range data.Annotations {
		lines = append(lines, renderAnnotation(a, cfg)...)
		lines = append(lines, "", "---", "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func renderAnnotation(a types.FormattedAnnotation, cfg types.FormatConfig) []string {
	var lines []string

	prefix := ""
	if cfg.UseColorEmoji {
		prefix = a.ColorEmoji + " "
	}

	pageInfo := ""
	if cfg.IncludePageNumbers && a.PageLabel != "" {
		if a.DeepLink != "" {
			pageInfo = fmt.Sprintf(" [*(p.%s)*](%s)", a.PageLabel, a.DeepLink)
		} else {
			pageInfo = fmt.Sprintf(" *(p.%s)*", a.PageLabel)
		}
	}

	switch {
	case a.IsImage:
		lines = append(lines, fmt.Sprintf("> %s\U0001F4F7 Figure annotation%s", prefix, pageInfo))
		if a.Comment != "" {
			lines = append(lines, "", a.Comment)
		}
	case a.Text != "":
		quoted := strings.Split(a.Text, "\n")
		for i, line := range quoted {
			quoted[i] = "> " + line
		}
		quoted[0] = "> " + prefix + strings.TrimPrefix(quoted[0], "> ") + pageInfo
		lines = append(lines, strings.Join(quoted, "\n"))
		if a.Comment != "" {
			lines = append(lines, "", a.Comment)
		}
	case a.Comment != "":
		// Comment-only note: no quote to attach it to, emit it alone.
		lines = append(lines, a.Comment)
	}

	if cfg.IncludeTags && len(a.Tags) > 0 {
		tags := make([]string, len(a.Tags))
		for i, t := range a.Tags {
			tags[i] = "#" + t
		}
		lines = append(lines, "", "Tags: "+strings.Join(tags, " "))
	}

	return lines
}
