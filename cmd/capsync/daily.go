// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var dailyCmd = &cobra.Command{
	Use:   "daily <itemKey>",
	Short: "Append an item's annotations to today's daily note",
	Long: `Daily renders an item's annotations as markdown and appends them to
today's daily note in the configured space. Unlike sync, this does not
touch the processed-item set; daily notes are additive.`,
	Args: cobra.ExactArgs(1),
	RunE: runDaily,
}

func runDaily(cmd *cobra.Command, args []string) error {
	noTimestamp, _ := cmd.Flags().GetBool("no-timestamp")

	cfg := buildConfig()
	svc, store, err := newService(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := svc.SyncToDailyNote(ctx, args[0], noTimestamp); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Added to daily note.")
	return nil
}

func init() {
	dailyCmd.Flags().Bool("no-timestamp", false, "omit the timestamp prefix in the daily note")

	rootCmd.AddCommand(dailyCmd)
}
