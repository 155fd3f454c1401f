// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotations

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/capsync/internal/zotero"
	"github.com/pdiddy/capsync/pkg/types"
)

// DefaultLinkScheme is the URI scheme for deep links back into the reader.
const DefaultLinkScheme = "zotero"

// Extractor reads annotation records from a library, normalizes them, and
// aggregates them per top-level item.
type Extractor struct {
	Library zotero.Library

	// LinkScheme overrides the deep-link URI scheme. Empty means "zotero".
	LinkScheme string
}

func (e *Extractor) scheme() string {
	if e.LinkScheme != "" {
		return e.LinkScheme
	}
	return DefaultLinkScheme
}

// IsDirectPDFURL reports whether a URL points straight at a PDF file:
// a .pdf extension (case-insensitive), an arxiv.org/pdf/ path, or a /pdf/
// path on a known preprint host (arXiv, bioRxiv, medRxiv). Direct PDF
// URLs make Capacities ingest the link as a MediaPDF object.
func IsDirectPDFURL(rawURL string) bool {
	u := strings.ToLower(rawURL)

	if strings.HasSuffix(u, ".pdf") {
		return true
	}
	if strings.Contains(u, "arxiv.org/pdf/") {
		return true
	}
	if strings.Contains(u, "/pdf/") &&
		(strings.Contains(u, "arxiv") ||
			strings.Contains(u, "biorxiv") ||
			strings.Contains(u, "medrxiv")) {
		return true
	}
	return false
}

// positionPayload is the structured part of an annotation position we care
// about; the payload also carries rects that the pipeline ignores.
type positionPayload struct {
	PageIndex *int `json:"pageIndex"`
}

// parsePageIndex extracts the zero-based page index from a raw position
// payload. A missing or malformed payload is a valid outcome, not an error.
func parsePageIndex(position string) (int, bool) {
	if strings.TrimSpace(position) == "" {
		return 0, false
	}
	var p positionPayload
	if err := json.Unmarshal([]byte(position), &p); err != nil || p.PageIndex == nil {
		return 0, false
	}
	return *p.PageIndex, true
}

// FromAttachment returns the raw annotations of one attachment. Non-PDF
// attachments yield an empty sequence.
func (e *Extractor) FromAttachment(ctx context.Context, att types.Attachment) ([]types.RawAnnotation, error) {
	if !att.IsPDF() {
		return nil, nil
	}
	return e.Library.Annotations(ctx, att.Key)
}

// DeepLink builds a URI that reopens the reader at the given annotation.
// The page component is present only when a position was resolved; pages
// are 1-based in the link.
func (e *Extractor) DeepLink(attachmentKey, annotationKey string, pageIndex int, hasPage bool) string {
	query := "annotation=" + annotationKey
	if hasPage {
		query = fmt.Sprintf("page=%d&%s", pageIndex+1, query)
	}
	return fmt.Sprintf("%s://open-pdf/library/items/%s?%s", e.scheme(), attachmentKey, query)
}

// SelectURI builds a local selection link for a top-level item.
func (e *Extractor) SelectURI(itemKey string) string {
	return fmt.Sprintf("%s://select/library/items/%s", e.scheme(), itemKey)
}

// isLocalURI reports whether a URL is a reader-local link rather than a
// web resource.
func (e *Extractor) isLocalURI(rawURL string) bool {
	return strings.HasPrefix(rawURL, e.scheme()+"://")
}

// DOIURL returns the resolver link for a DOI.
func DOIURL(doi string) string {
	return "https://doi.org/" + doi
}

// CreatorDisplay joins creator names as "First Last" pairs separated by
// ", ". Entries whose trimmed name is empty are dropped.
func CreatorDisplay(creators []types.Creator) string {
	var names []string
	for _, c := range creators {
		name := strings.TrimSpace(c.FirstName + " " + c.LastName)
		if name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// FromItem aggregates the annotations of the top-level item owning key.
// The key may name the item itself, one of its attachments, or one of its
// annotations. Returns nil when the item has no PDF attachments; an item
// with PDFs but no qualifying annotations yields an empty sequence.
//
// Annotations from all PDF attachments are merged into one sequence and
// sorted ascending by sort index (lexical, empty first), so inter-attachment
// order is determined entirely by sort index.
func (e *Extractor) FromItem(ctx context.Context, key string) (*types.ItemAnnotationData, error) {
	item, err := e.Library.ResolveTopLevel(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolving item %s: %w", key, err)
	}
	if item == nil {
		return nil, nil
	}

	attachments, err := e.Library.Attachments(ctx, item.Key)
	if err != nil {
		return nil, fmt.Errorf("listing attachments of %s: %w", item.Key, err)
	}

	var pdfs []types.Attachment
	for _, att := range attachments {
		if att.IsPDF() {
			pdfs = append(pdfs, att)
		}
	}
	if len(pdfs) == 0 {
		return nil, nil
	}

	var (
		all       []types.FormattedAnnotation
		directPDF string
	)

	for _, pdf := range pdfs {
		// Last matching attachment wins when several carry direct PDF URLs.
		if pdf.URL != "" && IsDirectPDFURL(pdf.URL) {
			directPDF = pdf.URL
		}

		raws, err := e.FromAttachment(ctx, pdf)
		if err != nil {
			return nil, fmt.Errorf("reading annotations of %s: %w", pdf.Key, err)
		}

		for _, raw := range raws {
			if fa, ok := e.classify(raw); ok {
				all = append(all, fa)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].SortIndex < all[j].SortIndex
	})

	data := &types.ItemAnnotationData{
		ItemKey:      item.Key,
		ItemTitle:    item.Title,
		ItemDOI:      item.DOI,
		ItemCreators: CreatorDisplay(item.Creators),
		ItemDate:     item.Date,
		PDFTitle:     pdfs[0].Title,
		PDFURL:       directPDF,
		Annotations:  all,
	}
	data.ItemURL = e.resolveItemURL(item)
	return data, nil
}

// resolveItemURL picks the item link with priority: explicit URL field,
// DOI resolver link, then a local selection URI for personal libraries.
func (e *Extractor) resolveItemURL(item *types.Item) string {
	if item.URL != "" {
		return item.URL
	}
	if item.DOI != "" {
		return DOIURL(item.DOI)
	}
	if item.Library == types.LibraryUser {
		return e.SelectURI(item.Key)
	}
	return ""
}

// classify converts a raw annotation into its formatted form. Image
// annotations are always retained; text-bearing kinds are retained only
// when they carry text or a comment. Ink and unknown kinds are dropped.
func (e *Extractor) classify(raw types.RawAnnotation) (types.FormattedAnnotation, bool) {
	pageIndex, hasPage := parsePageIndex(raw.Position)

	fa := types.FormattedAnnotation{
		Comment:    raw.Comment,
		Color:      ResolveColor(raw.Color),
		ColorEmoji: ColorEmoji(raw.Color),
		PageLabel:  raw.PageLabel,
		PageIndex:  -1,
		Tags:       raw.Tags,
		SortIndex:  raw.SortIndex,
		DeepLink:   e.DeepLink(raw.ParentKey, raw.Key, pageIndex, hasPage),
	}
	if hasPage {
		fa.PageIndex = pageIndex
	}

	switch raw.Kind {
	case types.KindImage:
		fa.IsImage = true
		return fa, true
	case types.KindHighlight, types.KindUnderline, types.KindNote:
		if raw.Text == "" && raw.Comment == "" {
			return types.FormattedAnnotation{}, false
		}
		fa.Text = raw.Text
		return fa, true
	}
	return types.FormattedAnnotation{}, false
}

// BestURL picks the submission URL for an aggregate with priority:
// direct PDF URL from an attachment, a direct PDF URL in the item's own
// URL field, the DOI link, the plain URL field, and finally the local
// selection URI.
func (e *Extractor) BestURL(data *types.ItemAnnotationData) string {
	if data.PDFURL != "" {
		return data.PDFURL
	}
	if data.ItemURL != "" && !e.isLocalURI(data.ItemURL) && IsDirectPDFURL(data.ItemURL) {
		return data.ItemURL
	}
	if data.ItemDOI != "" {
		return DOIURL(data.ItemDOI)
	}
	if data.ItemURL != "" && !e.isLocalURI(data.ItemURL) {
		return data.ItemURL
	}
	if data.ItemURL != "" {
		return data.ItemURL
	}
	return e.SelectURI(data.ItemKey)
}

// Description builds the submission description from creators and a
// parenthesized date, truncated to 1000 characters.
func Description(data *types.ItemAnnotationData) string {
	var parts []string
	if data.ItemCreators != "" {
		parts = append(parts, data.ItemCreators)
	}
	if data.ItemDate != "" {
		parts = append(parts, "("+data.ItemDate+")")
	}
	desc := strings.Join(parts, " ")
	if len(desc) > 1000 {
		desc = desc[:1000]
	}
	return desc
}
