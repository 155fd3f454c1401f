// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package capacities is the HTTP client for the Capacities API. It covers
// the three operations the sync pipeline needs: listing spaces, saving a
// weblink, and appending to the daily note.
package capacities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/capsync/internal/httputil"
	"github.com/pdiddy/capsync/pkg/types"
)

// apiBase is the Capacities API endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.capacities.io"

// Payload limits enforced at the transport boundary.
const (
	maxTitleLen       = 500
	maxDescriptionLen = 1000
	maxTags           = 30
	maxMarkdownLen    = 200000
)

const defaultTimeout = 30 * time.Second

// APIError is the typed error for non-success API responses. Message
// embeds the status text and the raw response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client issues authenticated requests against one Capacities space. It
// holds no per-call state; construct a new one whenever credentials change.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	spaceID    string
	userAgent  string
}

// NewClient builds a client from configuration. Credentials may be empty;
// Configured reports whether the client can actually submit.
func NewClient(cfg types.CapacitiesConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "capsync"
	}
	base := cfg.BaseURL
	if base == "" {
		base = apiBase
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		token:      cfg.APIToken,
		spaceID:    cfg.SpaceID,
		userAgent:  ua,
	}
}

// Configured reports whether both the API token and the target space are set.
func (c *Client) Configured() bool {
	return c.token != "" && c.spaceID != ""
}

// SpaceID returns the configured target space.
func (c *Client) SpaceID() string { return c.spaceID }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.token == "" {
		return fmt.Errorf("capacities API token not configured")
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return fmt.Errorf("capacities API request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status: resp.StatusCode,
			Message: fmt.Sprintf("capacities API error: %d %s - %s",
				resp.StatusCode, http.StatusText(resp.StatusCode), string(respBody)),
		}
	}

	if out == nil || strings.TrimSpace(string(respBody)) == "" {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// SpaceIcon describes a space's icon as returned by the API.
type SpaceIcon struct {
	Type     string `json:"type"`
	Val      string `json:"val"`
	Color    string `json:"color,omitempty"`
	ColorHex string `json:"colorHex,omitempty"`
}

// Space is one entry from the space listing.
type Space struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Icon  *SpaceIcon `json:"icon,omitempty"`
}

type spacesResponse struct {
	Spaces []Space `json:"spaces"`
}

// Spaces lists the spaces the token can access.
func (c *Client) Spaces(ctx context.Context) ([]Space, error) {
	var sr spacesResponse
	if err := c.do(ctx, http.MethodGet, "/spaces", nil, &sr); err != nil {
		return nil, err
	}
	return sr.Spaces, nil
}

// TestConnection reports whether the API is reachable with the configured
// token.
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.Spaces(ctx)
	return err == nil
}

// WeblinkParams are the caller-supplied fields for a weblink submission.
type WeblinkParams struct {
	URL                  string
	TitleOverwrite       string
	DescriptionOverwrite string
	Tags                 []string
	MDText               string
}

type weblinkRequest struct {
	SpaceID              string   `json:"spaceId"`
	URL                  string   `json:"url"`
	TitleOverwrite       string   `json:"titleOverwrite,omitempty"`
	DescriptionOverwrite string   `json:"descriptionOverwrite,omitempty"`
	Tags                 []string `json:"tags,omitempty"`
	MDText               string   `json:"mdText,omitempty"`
}

// WeblinkResponse describes the object Capacities created for a weblink.
type WeblinkResponse struct {
	SpaceID     string   `json:"spaceId"`
	ID          string   `json:"id"`
	StructureID string   `json:"structureId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// SaveWeblink submits a URL with optional markdown body to the configured
// space. Capacities analyzes the URL and stores it as the appropriate
// object type (MediaPDF for direct PDF links, MediaWebResource otherwise).
// Oversized fields are truncated to the documented API limits.
func (c *Client) SaveWeblink(ctx context.Context, p WeblinkParams) (*WeblinkResponse, error) {
	if c.spaceID == "" {
		return nil, fmt.Errorf("capacities space ID not configured")
	}

	req := weblinkRequest{
		SpaceID:              c.spaceID,
		URL:                  p.URL,
		TitleOverwrite:       truncate(p.TitleOverwrite, maxTitleLen),
		DescriptionOverwrite: truncate(p.DescriptionOverwrite, maxDescriptionLen),
		MDText:               truncate(p.MDText, maxMarkdownLen),
	}
	if len(p.Tags) > maxTags {
		req.Tags = p.Tags[:maxTags]
	} else {
		req.Tags = p.Tags
	}

	var resp WeblinkResponse
	if err := c.do(ctx, http.MethodPost, "/save-weblink", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type dailyNoteRequest struct {
	SpaceID     string `json:"spaceId"`
	MDText      string `json:"mdText"`
	NoTimeStamp bool   `json:"noTimeStamp,omitempty"`
}

// SaveToDailyNote appends markdown to today's daily note in the
// configured space. The endpoint returns an empty body on success.
func (c *Client) SaveToDailyNote(ctx context.Context, mdText string, noTimestamp bool) error {
	if c.spaceID == "" {
		return fmt.Errorf("capacities space ID not configured")
	}

	req := dailyNoteRequest{
		SpaceID:     c.spaceID,
		MDText:      truncate(mdText, maxMarkdownLen),
		NoTimeStamp: noTimestamp,
	}
	return c.do(ctx, http.MethodPost, "/save-to-daily-note", req, nil)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
