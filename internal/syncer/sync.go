// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syncer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/capsync/internal/annotations"
	"github.com/pdiddy/capsync/internal/capacities"
	"github.com/pdiddy/capsync/pkg/types"
)

// Failure messages surfaced in SyncResult.Error.
const (
	errNotConfigured = "Capacities API not configured. Please set API token and Space ID."
	errAlreadySynced = "Item already synced. Use force sync to re-sync."
	errNoAttachments = "No PDF attachments or annotations found."
	errNoAnnotations = "No annotations found in PDF."
)

const defaultRequestDelay = time.Second

// Options control a single-item sync attempt.
type Options struct {
	// Force bypasses the dedup guard and re-submits.
	Force bool

	// SkipDedupCheck skips the guard without implying a forced re-sync;
	// used when the caller has already consulted the store.
	SkipDedupCheck bool
}

// Service syncs items from the library to Capacities. All collaborators
// are injected so tests can substitute fakes.
type Service struct {
	Client    *capacities.Client
	Extractor *annotations.Extractor
	Dedup     *Dedup
	Format    types.FormatConfig

	// RequestDelay paces consecutive batch submissions. Zero means no
	// delay; NewService applies the 1 s default.
	RequestDelay time.Duration
}

// NewService wires a Service with configuration defaults applied.
func NewService(client *capacities.Client, ex *annotations.Extractor, dedup *Dedup, format types.FormatConfig, cfg types.SyncConfig) *Service {
	delay := cfg.RequestDelay
	if delay == 0 {
		delay = defaultRequestDelay
	}
	return &Service{
		Client:       client,
		Extractor:    ex,
		Dedup:        dedup,
		Format:       format,
		RequestDelay: delay,
	}
}

// failure builds a failed result, resolving the item title when possible.
func (s *Service) failure(ctx context.Context, key, msg string) types.SyncResult {
	return types.SyncResult{
		ItemKey:   key,
		ItemTitle: s.titleFor(ctx, key),
		Error:     msg,
	}
}

// titleFor resolves an item's title for progress and result records. A
// resolution failure degrades to the key itself.
func (s *Service) titleFor(ctx context.Context, key string) string {
	item, err := s.Extractor.Library.ResolveTopLevel(ctx, key)
	if err != nil || item == nil || item.Title == "" {
		return key
	}
	return item.Title
}

// SyncItem submits one item's annotations as a Capacities weblink.
// Every attempt yields exactly one result; the only state written is the
// dedup entry, added after the remote call succeeds. A failed submission
// leaves the dedup set untouched so a retry remains possible.
func (s *Service) SyncItem(ctx context.Context, w io.Writer, key string, opts Options) types.SyncResult {
	if !s.Client.Configured() {
		return s.failure(ctx, key, errNotConfigured)
	}

	// Idempotence guard: skip items already submitted unless forced.
	if !opts.Force && !opts.SkipDedupCheck && s.Dedup.IsProcessed(key) {
		return s.failure(ctx, key, errAlreadySynced)
	}

	data, err := s.Extractor.FromItem(ctx, key)
	if err != nil {
		return s.failure(ctx, key, err.Error())
	}
	if data == nil {
		return s.failure(ctx, key, errNoAttachments)
	}
	if len(data.Annotations) == 0 {
		return types.SyncResult{
			ItemKey:   data.ItemKey,
			ItemTitle: data.ItemTitle,
			Error:     errNoAnnotations,
		}
	}

	mdText := annotations.Render(data, s.Format)
	url := s.Extractor.BestURL(data)
	description := annotations.Description(data)

	tags := []string{"zotero", "annotations"}
	if data.ItemDOI != "" {
		tags = append(tags, "research")
	}

	resp, err := s.Client.SaveWeblink(ctx, capacities.WeblinkParams{
		URL:                  url,
		TitleOverwrite:       data.ItemTitle,
		DescriptionOverwrite: description,
		Tags:                 tags,
		MDText:               mdText,
	})
	if err != nil {
		return types.SyncResult{
			ItemKey:   data.ItemKey,
			ItemTitle: data.ItemTitle,
			Error:     err.Error(),
		}
	}

	if err := s.Dedup.Add(data.ItemKey); err != nil && w != nil {
		fmt.Fprintf(w, "warning: could not record %s as processed: %v\n", data.ItemKey, err)
	}

	return types.SyncResult{
		ItemKey:     data.ItemKey,
		ItemTitle:   data.ItemTitle,
		Success:     true,
		RemoteID:    resp.ID,
		StructureID: resp.StructureID,
	}
}

// Preview extracts and renders an item's annotations without any network
// call or state change. Returns the empty string when there is nothing
// to sync.
func (s *Service) Preview(ctx context.Context, key string) (string, error) {
	data, err := s.Extractor.FromItem(ctx, key)
	if err != nil {
		return "", err
	}
	if data == nil || len(data.Annotations) == 0 {
		return "", nil
	}
	return annotations.Render(data, s.Format), nil
}

// SyncToDailyNote renders an item's annotations and appends them to
// today's daily note. The dedup set is not consulted or updated; daily
// notes are additive by design.
func (s *Service) SyncToDailyNote(ctx context.Context, key string, noTimestamp bool) error {
	if !s.Client.Configured() {
		return fmt.Errorf("capacities API not configured")
	}
	data, err := s.Extractor.FromItem(ctx, key)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("no PDF attachments or annotations found for %s", key)
	}
	if len(data.Annotations) == 0 {
		return fmt.Errorf("no annotations found in PDF for %s", key)
	}

	md := fmt.Sprintf("## %s\n\n%s", data.ItemTitle, annotations.Render(data, s.Format))
	return s.Client.SaveToDailyNote(ctx, md, noTimestamp)
}
