// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/capsync/pkg/types"
)

// Annotation type codes as stored in itemAnnotations.type.
const (
	annotHighlight = 1
	annotNote      = 2
	annotImage     = 3
	annotInk       = 4
	annotUnderline = 5
)

// sqliteTimeFmt is the timestamp format Zotero uses in dateModified columns.
const sqliteTimeFmt = "2006-01-02 15:04:05"

// Store reads a Zotero library database. All queries are read-only; the
// connection is opened with mode=ro so a running Zotero instance keeps
// exclusive write access.
type Store struct {
	db *sql.DB
}

// Open opens the library database at cfg.Database read-only.
func Open(cfg types.ZoteroConfig) (*Store, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("zotero database path not configured")
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", cfg.Database)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening library database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// itemID returns the internal row ID for a key, or 0 when the key does
// not exist or the item is in the trash.
func (s *Store) itemID(ctx context.Context, key string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT itemID FROM items
		 WHERE key = ? AND itemID NOT IN (SELECT itemID FROM deletedItems)`, key,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up item %s: %w", key, err)
	}
	return id, nil
}

// parentOf returns the parent item ID of an annotation or attachment, or
// 0 for a top-level item.
func (s *Store) parentOf(ctx context.Context, id int64) (int64, error) {
	var parent sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT parentItemID FROM itemAnnotations WHERE itemID = ?`, id,
	).Scan(&parent)
	if err == nil && parent.Valid {
		return parent.Int64, nil
	}
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("reading annotation parent: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT parentItemID FROM itemAttachments WHERE itemID = ?`, id,
	).Scan(&parent)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading attachment parent: %w", err)
	}
	if parent.Valid {
		return parent.Int64, nil
	}
	return 0, nil
}

// ResolveTopLevel implements Library. It walks annotation → attachment →
// item parent links until it reaches the top-level record.
func (s *Store) ResolveTopLevel(ctx context.Context, key string) (*types.Item, error) {
	id, err := s.itemID(ctx, key)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}

	// Two hops at most: annotation → attachment → item.
	for hop := 0; hop < 3; hop++ {
		parent, err := s.parentOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if parent == 0 {
			break
		}
		id = parent
	}

	return s.itemByID(ctx, id)
}

// itemByID assembles a full Item record: key, data fields, creators, and
// the owning library's type.
func (s *Store) itemByID(ctx context.Context, id int64) (*types.Item, error) {
	item := &types.Item{}
	var libraryID int64

	err := s.db.QueryRowContext(ctx,
		`SELECT key, libraryID, dateModified FROM items WHERE itemID = ?`, id,
	).Scan(&item.Key, &libraryID, &item.DateModified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading item %d: %w", id, err)
	}

	fields, err := s.itemFields(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Title = fields["title"]
	item.URL = fields["url"]
	item.DOI = fields["DOI"]
	item.Date = fields["date"]

	var libType string
	err = s.db.QueryRowContext(ctx,
		`SELECT type FROM libraries WHERE libraryID = ?`, libraryID,
	).Scan(&libType)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("reading library %d: %w", libraryID, err)
	}
	item.Library = types.LibraryType(libType)

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.firstName, c.lastName
		 FROM itemCreators ic
		 JOIN creators c ON c.creatorID = ic.creatorID
		 WHERE ic.itemID = ?
		 ORDER BY ic.orderIndex`, id)
	if err != nil {
		return nil, fmt.Errorf("reading creators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var first, last sql.NullString
		if err := rows.Scan(&first, &last); err != nil {
			return nil, fmt.Errorf("scanning creator: %w", err)
		}
		item.Creators = append(item.Creators, types.Creator{
			FirstName: first.String,
			LastName:  last.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating creators: %w", err)
	}

	return item, nil
}

// itemFields reads the data fields of an item into a name → value map.
func (s *Store) itemFields(ctx context.Context, id int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.fieldName, v.value
		 FROM itemData d
		 JOIN fields f ON f.fieldID = d.fieldID
		 JOIN itemDataValues v ON v.valueID = d.valueID
		 WHERE d.itemID = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("reading item fields: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		fields[name] = value
	}
	return fields, rows.Err()
}

// Attachments implements Library.
func (s *Store) Attachments(ctx context.Context, itemKey string) ([]types.Attachment, error) {
	id, err := s.itemID(ctx, itemKey)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT i.itemID, i.key, ia.contentType
		 FROM itemAttachments ia
		 JOIN items i ON i.itemID = ia.itemID
		 WHERE ia.parentItemID = ?
		   AND i.itemID NOT IN (SELECT itemID FROM deletedItems)
		 ORDER BY i.itemID`, id)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	defer rows.Close()

	type attRow struct {
		id  int64
		att types.Attachment
	}
	var attRows []attRow
	for rows.Next() {
		var (
			attID       int64
			key         string
			contentType sql.NullString
		)
		if err := rows.Scan(&attID, &key, &contentType); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		attRows = append(attRows, attRow{id: attID, att: types.Attachment{
			Key:         key,
			ParentKey:   itemKey,
			ContentType: contentType.String,
		}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}

	attachments := make([]types.Attachment, 0, len(attRows))
	for _, r := range attRows {
		fields, err := s.itemFields(ctx, r.id)
		if err != nil {
			return nil, err
		}
		r.att.Title = fields["title"]
		r.att.URL = fields["url"]
		attachments = append(attachments, r.att)
	}
	return attachments, nil
}

// Annotations implements Library. Results come back in sort-index order,
// though the extractor re-sorts after merging attachments anyway.
func (s *Store) Annotations(ctx context.Context, attachmentKey string) ([]types.RawAnnotation, error) {
	id, err := s.itemID(ctx, attachmentKey)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT i.itemID, i.key, a.type, a.text, a.comment, a.color,
		        a.pageLabel, a.sortIndex, a.position, i.dateAdded, i.dateModified
		 FROM itemAnnotations a
		 JOIN items i ON i.itemID = a.itemID
		 WHERE a.parentItemID = ?
		   AND i.itemID NOT IN (SELECT itemID FROM deletedItems)
		 ORDER BY a.sortIndex`, id)
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}
	defer rows.Close()

	type annRow struct {
		id  int64
		ann types.RawAnnotation
	}
	var annRows []annRow
	for rows.Next() {
		var (
			annID                                int64
			key                                  string
			kind                                 int
			text, comment, color, label, sortIdx sql.NullString
			position, dateAdded, dateModified    sql.NullString
		)
		if err := rows.Scan(&annID, &key, &kind, &text, &comment, &color,
			&label, &sortIdx, &position, &dateAdded, &dateModified); err != nil {
			return nil, fmt.Errorf("scanning annotation: %w", err)
		}
		annRows = append(annRows, annRow{id: annID, ann: types.RawAnnotation{
			Key:          key,
			ParentKey:    attachmentKey,
			Kind:         annotationKind(kind),
			Text:         text.String,
			Comment:      comment.String,
			Color:        color.String,
			PageLabel:    label.String,
			SortIndex:    sortIdx.String,
			Position:     position.String,
			DateAdded:    dateAdded.String,
			DateModified: dateModified.String,
		}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotations: %w", err)
	}

	annotations := make([]types.RawAnnotation, 0, len(annRows))
	for _, r := range annRows {
		tags, err := s.itemTags(ctx, r.id)
		if err != nil {
			return nil, err
		}
		r.ann.Tags = tags
		annotations = append(annotations, r.ann)
	}
	return annotations, nil
}

// itemTags reads the tag names attached to an item.
func (s *Store) itemTags(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.name FROM itemTags it
		 JOIN tags t ON t.tagID = it.tagID
		 WHERE it.itemID = ?
		 ORDER BY t.name`, id)
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// ModifiedSince returns the keys of top-level items whose own record, or
// whose attachments or annotations, changed after the given time. Used by
// watch mode to pick up recent edits.
func (s *Store) ModifiedSince(ctx context.Context, since time.Time) ([]string, error) {
	cutoff := since.UTC().Format(sqliteTimeFmt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM items
		 WHERE dateModified > ?
		   AND itemID NOT IN (SELECT itemID FROM deletedItems)`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying modified items: %w", err)
	}
	defer rows.Close()

	var changed []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning modified item: %w", err)
		}
		changed = append(changed, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modified items: %w", err)
	}

	// Resolve every changed record to its top-level item and deduplicate.
	seen := make(map[string]bool)
	var keys []string
	for _, key := range changed {
		item, err := s.ResolveTopLevel(ctx, key)
		if err != nil {
			return nil, err
		}
		if item == nil || seen[item.Key] {
			continue
		}
		seen[item.Key] = true
		keys = append(keys, item.Key)
	}
	return keys, nil
}

func annotationKind(code int) types.AnnotationKind {
	switch code {
	case annotHighlight:
		return types.KindHighlight
	case annotNote:
		return types.KindNote
	case annotImage:
		return types.KindImage
	case annotInk:
		return types.KindInk
	case annotUnderline:
		return types.KindUnderline
	}
	return ""
}
