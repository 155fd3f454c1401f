// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "List Capacities spaces available to the configured token",
	Long: `Spaces queries the Capacities API for the spaces the configured token
can access. It doubles as a connection test: a successful listing means
the token works. Copy the desired space ID into capacities.space_id.`,
	RunE: runSpaces,
}

func runSpaces(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	client := newClient(buildConfig())
	spaces, err := client.Spaces(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(spaces)
	}

	if len(spaces) == 0 {
		fmt.Println("No spaces found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-38s  %-30s  %s\n", "ID", "Title", "Icon")
	for _, s := range spaces {
		icon := ""
		if s.Icon != nil {
			icon = s.Icon.Val
		}
		fmt.Fprintf(os.Stdout, "%-38s  %-30s  %s\n", s.ID, s.Title, icon)
	}
	return nil
}

func init() {
	spacesCmd.Flags().Bool("json", false, "output spaces as JSON")

	rootCmd.AddCommand(spacesCmd)
}
