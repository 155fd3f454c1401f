// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capacities

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/capsync/internal/httputil"
	"github.com/pdiddy/capsync/pkg/types"
)

func init() {
	// Keep 429 backoff out of test wall time.
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func testClient(tsURL string) *Client {
	return NewClient(types.CapacitiesConfig{
		APIToken: "tok-123",
		SpaceID:  "space-1",
		BaseURL:  tsURL,
	})
}

func TestConfigured(t *testing.T) {
	assert.True(t, testClient("http://x").Configured())
	assert.False(t, NewClient(types.CapacitiesConfig{APIToken: "tok"}).Configured())
	assert.False(t, NewClient(types.CapacitiesConfig{SpaceID: "sp"}).Configured())
	assert.False(t, NewClient(types.CapacitiesConfig{}).Configured())
}

func TestSaveWeblink(t *testing.T) {
	var got weblinkRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/save-weblink", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(WeblinkResponse{
			SpaceID:     "space-1",
			ID:          "obj-9",
			StructureID: "MediaPDF",
			Title:       got.TitleOverwrite,
		})
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	resp, err := c.SaveWeblink(context.Background(), WeblinkParams{
		URL:                  "https://arxiv.org/pdf/2301.07041",
		TitleOverwrite:       "Paper",
		DescriptionOverwrite: "Ada Lovelace (1843)",
		Tags:                 []string{"zotero", "annotations"},
		MDText:               "## Annotations",
	})
	require.NoError(t, err)

	assert.Equal(t, "space-1", got.SpaceID)
	assert.Equal(t, "https://arxiv.org/pdf/2301.07041", got.URL)
	assert.Equal(t, "Paper", got.TitleOverwrite)
	assert.Equal(t, []string{"zotero", "annotations"}, got.Tags)

	assert.Equal(t, "obj-9", resp.ID)
	assert.Equal(t, "MediaPDF", resp.StructureID)
}

func TestSaveWeblink_TruncatesOversizedFields(t *testing.T) {
	var got weblinkRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	tags := make([]string, 40)
	for i := range tags {
		tags[i] = "t"
	}

	c := testClient(ts.URL)
	_, err := c.SaveWeblink(context.Background(), WeblinkParams{
		URL:                  "https://example.com",
		TitleOverwrite:       strings.Repeat("T", 600),
		DescriptionOverwrite: strings.Repeat("D", 1200),
		Tags:                 tags,
		MDText:               strings.Repeat("M", 200100),
	})
	require.NoError(t, err)

	assert.Len(t, got.TitleOverwrite, 500)
	assert.Len(t, got.DescriptionOverwrite, 1000)
	assert.Len(t, got.Tags, 30)
	assert.Len(t, got.MDText, 200000)
}

func TestSaveWeblink_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid space"}`))
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.SaveWeblink(context.Background(), WeblinkParams{URL: "https://example.com"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "400")
	assert.Contains(t, apiErr.Message, "invalid space")
}

func TestSaveWeblink_RetriesOn429(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req weblinkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req.URL)

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(WeblinkResponse{ID: "obj-1"})
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	resp, err := c.SaveWeblink(context.Background(), WeblinkParams{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "obj-1", resp.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSaveWeblink_NotConfigured(t *testing.T) {
	c := NewClient(types.CapacitiesConfig{APIToken: "tok"})
	_, err := c.SaveWeblink(context.Background(), WeblinkParams{URL: "https://example.com"})
	assert.ErrorContains(t, err, "space ID not configured")

	c = NewClient(types.CapacitiesConfig{SpaceID: "sp"})
	_, err = c.SaveWeblink(context.Background(), WeblinkParams{URL: "https://example.com"})
	assert.ErrorContains(t, err, "token not configured")
}

func TestSaveToDailyNote(t *testing.T) {
	var got dailyNoteRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/save-to-daily-note", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		// Endpoint responds with an empty body on success.
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	err := c.SaveToDailyNote(context.Background(), "## Paper\n\nnotes", true)
	require.NoError(t, err)

	assert.Equal(t, "space-1", got.SpaceID)
	assert.Equal(t, "## Paper\n\nnotes", got.MDText)
	assert.True(t, got.NoTimeStamp)
}

func TestSpaces(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/spaces", r.URL.Path)
		w.Write([]byte(`{"spaces":[{"id":"s1","title":"Research"},{"id":"s2","title":"Personal"}]}`))
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	spaces, err := c.Spaces(context.Background())
	require.NoError(t, err)
	require.Len(t, spaces, 2)
	assert.Equal(t, "s1", spaces[0].ID)
	assert.Equal(t, "Research", spaces[0].Title)
}

func TestTestConnection(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"spaces":[]}`))
	}))
	defer ok.Close()
	assert.True(t, testClient(ok.URL).TestConnection(context.Background()))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer bad.Close()
	assert.False(t, testClient(bad.URL).TestConnection(context.Background()))
}
