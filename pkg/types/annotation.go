// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the capsync pipeline:
// Zotero library records, extracted annotations, and sync outcomes.
package types

// AnnotationKind identifies the kind of mark recorded on a PDF attachment.
type AnnotationKind string

const (
	KindHighlight AnnotationKind = "highlight"
	KindUnderline AnnotationKind = "underline"
	KindNote      AnnotationKind = "note"
	KindImage     AnnotationKind = "image"
	KindInk       AnnotationKind = "ink"
)

// RawAnnotation is an annotation record as read from the Zotero library,
// before classification and link construction.
type RawAnnotation struct {
	// Key is the annotation's Zotero item key.
	Key string `json:"key" yaml:"key"`

	// ParentKey is the owning PDF attachment's key, used for deep linking.
	ParentKey string `json:"parent_key" yaml:"parent_key"`

	// Kind is the annotation kind. Ink (freehand) annotations carry no
	// renderable content and are dropped downstream.
	Kind AnnotationKind `json:"kind" yaml:"kind"`

	// Text is the highlighted or underlined passage, if any.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Comment is the user's note attached to the annotation, if any.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Color is the highlight color as a hex string (e.g. "#ffd400").
	Color string `json:"color,omitempty" yaml:"color,omitempty"`

	// PageLabel is the page label shown in the PDF reader (may be roman,
	// offset, or absent).
	PageLabel string `json:"page_label,omitempty" yaml:"page_label,omitempty"`

	// SortIndex is an opaque string encoding the annotation's position in
	// the document. Lexical comparison recovers reading order.
	SortIndex string `json:"sort_index,omitempty" yaml:"sort_index,omitempty"`

	// Position is the raw JSON position payload from the library. Parsed
	// defensively; a malformed payload means no page index.
	Position string `json:"position,omitempty" yaml:"position,omitempty"`

	// DateAdded and DateModified are the library timestamps.
	DateAdded    string `json:"date_added,omitempty" yaml:"date_added,omitempty"`
	DateModified string `json:"date_modified,omitempty" yaml:"date_modified,omitempty"`

	// Tags are the tag names attached to the annotation.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// FormattedAnnotation is an annotation normalized for markdown rendering.
// Immutable once built.
type FormattedAnnotation struct {
	// Text is the quoted passage. Empty for image annotations.
	Text string `json:"text" yaml:"text"`

	// Comment is the user's note, rendered as a paragraph below the quote.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Color is the resolved hex color. Unrecognized or missing source
	// colors resolve to the default yellow.
	Color string `json:"color" yaml:"color"`

	// ColorEmoji is the semantic marker derived from Color.
	ColorEmoji string `json:"color_emoji" yaml:"color_emoji"`

	// PageLabel is the page label for display, if present.
	PageLabel string `json:"page_label,omitempty" yaml:"page_label,omitempty"`

	// PageIndex is the zero-based page index, or -1 when no position was
	// resolved. Deep links render it 1-based.
	PageIndex int `json:"page_index" yaml:"page_index"`

	// Tags are the annotation's tag names.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// SortIndex orders annotations; empty string sorts first.
	SortIndex string `json:"sort_index" yaml:"sort_index"`

	// DeepLink reopens the source application at this annotation.
	DeepLink string `json:"deep_link,omitempty" yaml:"deep_link,omitempty"`

	// IsImage marks region/figure annotations, rendered as a figure
	// reference rather than a quote.
	IsImage bool `json:"is_image" yaml:"is_image"`
}

// ItemAnnotationData aggregates the annotations of one top-level item
// across all of its PDF attachments. Built fresh per sync attempt.
type ItemAnnotationData struct {
	// ItemKey is the top-level item's key.
	ItemKey string `json:"item_key" yaml:"item_key"`

	// ItemTitle is the top-level item's title.
	ItemTitle string `json:"item_title" yaml:"item_title"`

	// ItemURL is the resolved source URL: the item's URL field, else a
	// DOI link, else a local select URI for personal libraries.
	ItemURL string `json:"item_url,omitempty" yaml:"item_url,omitempty"`

	// ItemDOI is the item's DOI field, if any.
	ItemDOI string `json:"item_doi,omitempty" yaml:"item_doi,omitempty"`

	// ItemCreators is the display string of creator names ("First Last"
	// pairs joined by ", ").
	ItemCreators string `json:"item_creators,omitempty" yaml:"item_creators,omitempty"`

	// ItemDate is the item's date field as stored.
	ItemDate string `json:"item_date,omitempty" yaml:"item_date,omitempty"`

	// PDFTitle is the first PDF attachment's title.
	PDFTitle string `json:"pdf_title,omitempty" yaml:"pdf_title,omitempty"`

	// PDFURL is a direct-PDF URL found on an attachment, if any. When
	// several attachments carry one, the last wins.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Annotations is sorted ascending by SortIndex (lexical, empty first).
	Annotations []FormattedAnnotation `json:"annotations" yaml:"annotations"`
}

// SyncResult is the outcome of one sync attempt for one item. Produced
// once per attempt, never mutated.
type SyncResult struct {
	ItemKey   string `json:"item_key" yaml:"item_key"`
	ItemTitle string `json:"item_title" yaml:"item_title"`
	Success   bool   `json:"success" yaml:"success"`

	// RemoteID and StructureID identify the created Capacities object.
	RemoteID    string `json:"remote_id,omitempty" yaml:"remote_id,omitempty"`
	StructureID string `json:"structure_id,omitempty" yaml:"structure_id,omitempty"`

	// Error holds the failure reason. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
