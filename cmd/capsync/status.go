// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/capsync/internal/prefs"
	"github.com/pdiddy/capsync/internal/syncer"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show or reset the processed-item tracking state",
	Long: `Status reports how many items have been synced. Use --forget to make
one item syncable again, or --clear to reset the whole set. Entries are
only ever added after a successful submission and only removed here.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	clear, _ := cmd.Flags().GetBool("clear")
	forget, _ := cmd.Flags().GetString("forget")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := buildConfig()
	dedup := syncer.NewDedup(prefs.NewFileStore(cfg.Sync.StateFile))

	switch {
	case clear && forget != "":
		return fmt.Errorf("use --clear or --forget, not both")
	case clear:
		if err := dedup.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Processed-item set cleared.")
	case forget != "":
		if err := dedup.Remove(forget); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Forgot %s.\n", forget)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]int{"processedCount": dedup.Count()})
	}
	fmt.Printf("Synced items: %d\n", dedup.Count())
	return nil
}

func init() {
	statusCmd.Flags().Bool("clear", false, "clear the processed-item set")
	statusCmd.Flags().String("forget", "", "remove one item key from the processed set")
	statusCmd.Flags().Bool("json", false, "output stats as JSON")

	rootCmd.AddCommand(statusCmd)
}
