// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/capsync/internal/syncer"
	"github.com/pdiddy/capsync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the Zotero library and auto-sync changed items",
	Long: `Watch observes the Zotero database for changes. Edits within one
coalescing window (sync.watch_window, default 5s) trigger a single sync
pass over the items modified since the previous pass, forced so updated
annotations overwrite the earlier submission. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	svc, store, err := newService(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lastPass := time.Now()

	w := &watch.Watcher{
		Path:   cfg.Zotero.Database,
		Window: cfg.Sync.WatchWindow,
		W:      os.Stderr,
		OnPass: func(ctx context.Context) error {
			since := lastPass
			lastPass = time.Now()

			keys, err := store.ModifiedSince(ctx, since)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				return nil
			}
			fmt.Fprintf(os.Stderr, "library changed, syncing %d item(s)\n", len(keys))

			_, err = svc.SyncItems(ctx, os.Stderr, keys, syncer.BatchOptions{Force: true})
			return err
		},
	}

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
