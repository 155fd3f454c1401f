// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/capsync/pkg/types"
)

// fixtureSchema is the subset of the Zotero schema the store reads.
const fixtureSchema = `
CREATE TABLE libraries (libraryID INTEGER PRIMARY KEY, type TEXT);
CREATE TABLE items (itemID INTEGER PRIMARY KEY, key TEXT, libraryID INTEGER,
	dateAdded TEXT, dateModified TEXT);
CREATE TABLE deletedItems (itemID INTEGER PRIMARY KEY);
CREATE TABLE fields (fieldID INTEGER PRIMARY KEY, fieldName TEXT);
CREATE TABLE itemDataValues (valueID INTEGER PRIMARY KEY, value TEXT);
CREATE TABLE itemData (itemID INTEGER, fieldID INTEGER, valueID INTEGER);
CREATE TABLE itemAttachments (itemID INTEGER PRIMARY KEY, parentItemID INTEGER,
	contentType TEXT);
CREATE TABLE itemAnnotations (itemID INTEGER PRIMARY KEY, parentItemID INTEGER,
	type INTEGER, text TEXT, comment TEXT, color TEXT, pageLabel TEXT,
	sortIndex TEXT, position TEXT);
CREATE TABLE creators (creatorID INTEGER PRIMARY KEY, firstName TEXT, lastName TEXT);
CREATE TABLE itemCreators (itemID INTEGER, creatorID INTEGER, orderIndex INTEGER);
CREATE TABLE tags (tagID INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE itemTags (itemID INTEGER, tagID INTEGER);
`

// fixtureData populates one paper with a PDF attachment carrying two
// annotations, an HTML attachment, and a trashed sibling item.
const fixtureData = `
INSERT INTO libraries VALUES (1, 'user');

INSERT INTO items VALUES (1, 'ITEMKEY1', 1, '2024-01-01 00:00:00', '2024-01-02 03:04:05');
INSERT INTO items VALUES (2, 'ATTKEY1',  1, '2024-01-01 00:00:00', '2024-01-02 03:04:05');
INSERT INTO items VALUES (3, 'ANNKEY1',  1, '2024-01-01 00:00:00', '2024-01-02 03:04:05');
INSERT INTO items VALUES (4, 'ANNKEY2',  1, '2024-01-01 00:00:00', '2024-01-02 03:04:05');
INSERT INTO items VALUES (5, 'TRASHED',  1, '2024-01-01 00:00:00', '2024-01-02 03:04:05');
INSERT INTO items VALUES (6, 'ATTKEY2',  1, '2024-01-01 00:00:00', '2024-01-02 03:04:05');

INSERT INTO deletedItems VALUES (5);

INSERT INTO fields VALUES (1, 'title');
INSERT INTO fields VALUES (2, 'url');
INSERT INTO fields VALUES (3, 'DOI');
INSERT INTO fields VALUES (4, 'date');

INSERT INTO itemDataValues VALUES (1, 'Attention Is All You Need');
INSERT INTO itemDataValues VALUES (2, '10.5555/attention');
INSERT INTO itemDataValues VALUES (3, '2017');
INSERT INTO itemDataValues VALUES (4, 'preprint.pdf');
INSERT INTO itemDataValues VALUES (5, 'https://arxiv.org/pdf/1706.03762');

INSERT INTO itemData VALUES (1, 1, 1);
INSERT INTO itemData VALUES (1, 3, 2);
INSERT INTO itemData VALUES (1, 4, 3);
INSERT INTO itemData VALUES (2, 1, 4);
INSERT INTO itemData VALUES (2, 2, 5);

INSERT INTO itemAttachments VALUES (2, 1, 'application/pdf');
INSERT INTO itemAttachments VALUES (6, 1, 'text/html');

INSERT INTO itemAnnotations VALUES (3, 2, 1, 'highlighted text', 'a comment',
	'#5fb236', '3', '00001|000123|00456', '{"pageIndex":2}');
INSERT INTO itemAnnotations VALUES (4, 2, 4, NULL, NULL, '#ff6666', NULL,
	'00002|000001|00001', NULL);

INSERT INTO creators VALUES (1, 'Ashish', 'Vaswani');
INSERT INTO creators VALUES (2, 'Noam', 'Shazeer');
INSERT INTO itemCreators VALUES (1, 2, 1);
INSERT INTO itemCreators VALUES (1, 1, 0);

INSERT INTO tags VALUES (1, 'transformers');
INSERT INTO itemTags VALUES (3, 1);
`

func fixtureStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zotero.sqlite")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(fixtureSchema)
	require.NoError(t, err)
	_, err = db.Exec(fixtureData)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := Open(types.ZoteroConfig{Database: path})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_MissingPath(t *testing.T) {
	_, err := Open(types.ZoteroConfig{})
	assert.ErrorContains(t, err, "database path not configured")
}

func TestResolveTopLevel(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()

	// Any key in the item hierarchy resolves to the top-level record.
	for _, key := range []string{"ITEMKEY1", "ATTKEY1", "ANNKEY1"} {
		item, err := store.ResolveTopLevel(ctx, key)
		require.NoError(t, err, key)
		require.NotNil(t, item, key)
		assert.Equal(t, "ITEMKEY1", item.Key)
	}

	item, err := store.ResolveTopLevel(ctx, "ITEMKEY1")
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", item.Title)
	assert.Equal(t, "10.5555/attention", item.DOI)
	assert.Equal(t, "2017", item.Date)
	assert.Equal(t, types.LibraryUser, item.Library)

	// Creators come back in orderIndex order, not insertion order.
	require.Len(t, item.Creators, 2)
	assert.Equal(t, types.Creator{FirstName: "Ashish", LastName: "Vaswani"}, item.Creators[0])
	assert.Equal(t, types.Creator{FirstName: "Noam", LastName: "Shazeer"}, item.Creators[1])
}

func TestResolveTopLevel_UnknownAndTrashed(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()

	item, err := store.ResolveTopLevel(ctx, "NOSUCHKEY")
	require.NoError(t, err)
	assert.Nil(t, item)

	item, err = store.ResolveTopLevel(ctx, "TRASHED")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestAttachments(t *testing.T) {
	store := fixtureStore(t)

	atts, err := store.Attachments(context.Background(), "ITEMKEY1")
	require.NoError(t, err)
	require.Len(t, atts, 2)

	assert.Equal(t, "ATTKEY1", atts[0].Key)
	assert.Equal(t, "ITEMKEY1", atts[0].ParentKey)
	assert.Equal(t, "application/pdf", atts[0].ContentType)
	assert.True(t, atts[0].IsPDF())
	assert.Equal(t, "preprint.pdf", atts[0].Title)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762", atts[0].URL)

	assert.Equal(t, "ATTKEY2", atts[1].Key)
	assert.False(t, atts[1].IsPDF())
}

func TestAnnotations(t *testing.T) {
	store := fixtureStore(t)

	anns, err := store.Annotations(context.Background(), "ATTKEY1")
	require.NoError(t, err)
	require.Len(t, anns, 2)

	h := anns[0]
	assert.Equal(t, "ANNKEY1", h.Key)
	assert.Equal(t, "ATTKEY1", h.ParentKey)
	assert.Equal(t, types.KindHighlight, h.Kind)
	assert.Equal(t, "highlighted text", h.Text)
	assert.Equal(t, "a comment", h.Comment)
	assert.Equal(t, "#5fb236", h.Color)
	assert.Equal(t, "3", h.PageLabel)
	assert.Equal(t, "00001|000123|00456", h.SortIndex)
	assert.Equal(t, `{"pageIndex":2}`, h.Position)
	assert.Equal(t, []string{"transformers"}, h.Tags)

	// NULL columns degrade to empty strings.
	ink := anns[1]
	assert.Equal(t, types.KindInk, ink.Kind)
	assert.Equal(t, "", ink.Text)
	assert.Equal(t, "", ink.PageLabel)
	assert.Empty(t, ink.Tags)
}

func TestAnnotations_UnknownAttachment(t *testing.T) {
	store := fixtureStore(t)

	anns, err := store.Annotations(context.Background(), "NOSUCHKEY")
	require.NoError(t, err)
	assert.Empty(t, anns)
}

func TestModifiedSince(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()

	// Attachment and annotation changes resolve to one top-level key.
	keys, err := store.ModifiedSince(ctx, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"ITEMKEY1"}, keys)

	keys, err = store.ModifiedSince(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestAnnotationKind(t *testing.T) {
	assert.Equal(t, types.KindHighlight, annotationKind(1))
	assert.Equal(t, types.KindNote, annotationKind(2))
	assert.Equal(t, types.KindImage, annotationKind(3))
	assert.Equal(t, types.KindInk, annotationKind(4))
	assert.Equal(t, types.KindUnderline, annotationKind(5))
	assert.Equal(t, types.AnnotationKind(""), annotationKind(99))
}
