// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotations extracts PDF annotations from a Zotero library and
// renders them as markdown for Capacities.
package annotations

import "strings"

// colorEmoji maps the Zotero highlight palette to semantic markers.
var colorEmoji = map[string]string{
	"#ffd400": "\U0001F7E1", // yellow
	"#ff6666": "\U0001F534", // red
	"#5fb236": "\U0001F7E2", // green
	"#2ea8e5": "\U0001F535", // blue
	"#a28ae5": "\U0001F7E3", // purple
	"#e56eee": "\U0001F7E3", // magenta renders as purple
	"#f19837": "\U0001F7E0", // orange
	"#aaaaaa": "\u26AA",      // gray
}

const (
	// DefaultColor is the fallback for absent or unrecognized colors.
	DefaultColor = "#ffd400"

	defaultEmoji = "\U0001F7E1" // yellow
)

// ColorEmoji returns the marker for a hex color. Comparison is
// case-insensitive; absent or unknown colors map to the yellow default.
func ColorEmoji(hexColor string) string {
	if e, ok := colorEmoji[strings.ToLower(hexColor)]; ok {
		return e
	}
	return defaultEmoji
}

// ResolveColor normalizes a hex color to lower case, substituting the
// default for absent or unrecognized values.
func ResolveColor(hexColor string) string {
	c := strings.ToLower(hexColor)
	if _, ok := colorEmoji[c]; ok {
		return c
	}
	return DefaultColor
}
