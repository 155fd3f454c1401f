// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/capsync/internal/syncer"
	"github.com/pdiddy/capsync/internal/zotero"
	"github.com/pdiddy/capsync/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync [itemKey...]",
	Short: "Sync item annotations to Capacities",
	Long: `Sync extracts the PDF annotations of the given Zotero items, renders
them as markdown, and saves each item as a weblink in the configured
Capacities space. Keys may name top-level items, attachments, or single
annotations; each resolves to its owning top-level item.

Items already synced are skipped unless --force is given. Use
--modified-since to select items by modification time instead of keys.
Consecutive submissions are paced to respect the API rate limit.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	skipCheck, _ := cmd.Flags().GetBool("skip-dedup-check")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	reportPath, _ := cmd.Flags().GetString("report")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	modifiedSince, _ := cmd.Flags().GetString("modified-since")

	cfg := buildConfig()
	svc, store, err := newService(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	keys, err := selectKeys(ctx, store, args, modifiedSince)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to sync")
		return nil
	}

	if dryRun {
		return runDryRun(ctx, svc, keys)
	}

	if len(keys) == 1 {
		result := svc.SyncItem(ctx, os.Stderr, keys[0], syncer.Options{
			Force:          force,
			SkipDedupCheck: skipCheck,
		})
		return outputResults([]types.SyncResult{result}, jsonOutput, reportPath)
	}

	results, err := svc.SyncItems(ctx, os.Stderr, keys, syncer.BatchOptions{
		Force: force,
		OnProgress: func(p syncer.Progress) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", p.Current, p.Total, p.CurrentItem)
		},
	})
	if outErr := outputResults(results, jsonOutput, reportPath); outErr != nil {
		return outErr
	}
	return err
}

// selectKeys resolves the item selection: explicit keys resolved to
// unique top-level items in argument order, or a modification-time query.
func selectKeys(ctx context.Context, store *zotero.Store, args []string, modifiedSince string) ([]string, error) {
	if modifiedSince != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("give item keys or --modified-since, not both")
		}
		since, err := parseSince(modifiedSince)
		if err != nil {
			return nil, err
		}
		return store.ModifiedSince(ctx, since)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("item keys required (or --modified-since)")
	}

	seen := make(map[string]bool)
	var keys []string
	for _, arg := range args {
		item, err := store.ResolveTopLevel(ctx, arg)
		if err != nil {
			return nil, err
		}
		key := arg
		if item != nil {
			key = item.Key
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}

// parseSince accepts an RFC 3339 timestamp or a relative duration like "24h".
func parseSince(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --modified-since %q: use RFC 3339 or a duration like 24h", s)
	}
	return t, nil
}

func runDryRun(ctx context.Context, svc *syncer.Service, keys []string) error {
	for _, key := range keys {
		md, err := svc.Preview(ctx, key)
		if err != nil {
			return err
		}
		if md == "" {
			fmt.Fprintf(os.Stderr, "%s: nothing to sync\n", key)
			continue
		}
		fmt.Printf("--- %s ---\n%s\n", key, md)
	}
	return nil
}

func outputResults(results []types.SyncResult, jsonOutput bool, reportPath string) error {
	if reportPath != "" {
		if err := syncer.WriteReport(reportPath, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", reportPath)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	}

	if sum := syncer.Summarize(results); sum.Failed > 0 {
		return fmt.Errorf("%d item(s) failed to sync", sum.Failed)
	}
	return nil
}

func init() {
	syncCmd.Flags().Bool("force", false, "re-sync items even if already processed")
	syncCmd.Flags().Bool("skip-dedup-check", false, "skip the processed-item check (single item only)")
	syncCmd.Flags().Bool("dry-run", false, "print the markdown without submitting")
	syncCmd.Flags().String("modified-since", "", "sync items modified since an RFC 3339 time or duration (e.g. 24h)")
	syncCmd.Flags().String("report", "", "write a YAML run report to this file")
	syncCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(syncCmd)
}
