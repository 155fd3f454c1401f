// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LibraryType distinguishes a personal library from a shared group library.
// Local select URIs are only valid fallback links for personal libraries.
type LibraryType string

const (
	LibraryUser  LibraryType = "user"
	LibraryGroup LibraryType = "group"
)

// Creator is one author/editor entry on a top-level item.
type Creator struct {
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
}

// Item is a top-level library record (e.g. a paper) owning attachments.
type Item struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title" yaml:"title"`

	// URL and DOI come from the item's data fields and may be empty.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Date is the item's date field as stored by the library.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	// Library identifies whether the owning library is personal or shared.
	Library LibraryType `json:"library" yaml:"library"`

	Creators []Creator `json:"creators,omitempty" yaml:"creators,omitempty"`

	DateModified string `json:"date_modified,omitempty" yaml:"date_modified,omitempty"`
}

// Attachment is a file linked to a top-level item.
type Attachment struct {
	Key       string `json:"key" yaml:"key"`
	ParentKey string `json:"parent_key" yaml:"parent_key"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`

	// URL is the attachment's source URL field, if any.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// ContentType is the stored MIME type (e.g. "application/pdf").
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
}

// IsPDF reports whether the attachment is a PDF.
func (a Attachment) IsPDF() bool {
	return a.ContentType == "application/pdf"
}
