// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zotero reads items, attachments, and annotations from a Zotero
// library database. The database is opened read-only; this pipeline only
// ever extracts existing annotations.
package zotero

import (
	"context"

	"github.com/pdiddy/capsync/pkg/types"
)

// Library is the read-only view of the document store the extraction
// pipeline consumes. Store implements it over zotero.sqlite; tests
// substitute fakes.
type Library interface {
	// ResolveTopLevel resolves any item key (top-level item, attachment,
	// or annotation) to the owning top-level item. Returns nil when the
	// key does not exist or the item is deleted.
	ResolveTopLevel(ctx context.Context, key string) (*types.Item, error)

	// Attachments lists the attachments of a top-level item.
	Attachments(ctx context.Context, itemKey string) ([]types.Attachment, error)

	// Annotations lists the raw annotations of an attachment.
	Annotations(ctx context.Context, attachmentKey string) ([]types.RawAnnotation, error)
}
