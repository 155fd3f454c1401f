// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the capsync CLI, which extracts
// PDF annotations from a Zotero library and syncs them to Capacities.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/capsync/internal/annotations"
	"github.com/pdiddy/capsync/internal/capacities"
	"github.com/pdiddy/capsync/internal/prefs"
	"github.com/pdiddy/capsync/internal/secrets"
	"github.com/pdiddy/capsync/internal/syncer"
	"github.com/pdiddy/capsync/internal/zotero"
	"github.com/pdiddy/capsync/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the loaded secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the capsync CLI.
var rootCmd = &cobra.Command{
	Use:   "capsync",
	Short: "Sync Zotero PDF annotations to Capacities",
	Long: `capsync reads highlighted and annotated passages from the PDFs in a
Zotero library, renders them as markdown, and saves them to a Capacities
space as weblink objects. Items already submitted are tracked locally so
repeated runs never create duplicates.

The Zotero database is opened read-only; capsync never modifies the
library. Credentials come from the config file, environment, or
.secrets/ files.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./capsync.yaml or ~/.config/capsync/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("capsync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "capsync"))
		}
	}

	viper.SetEnvPrefix("CAPSYNC")
	viper.AutomaticEnv()

	viper.SetDefault("zotero.link_scheme", annotations.DefaultLinkScheme)
	viper.SetDefault("sync.request_delay", time.Second)
	viper.SetDefault("sync.watch_window", 5*time.Second)
	viper.SetDefault("capacities.timeout", 30*time.Second)
	viper.SetDefault("format.include_page_numbers", true)
	viper.SetDefault("format.include_tags", true)
	viper.SetDefault("format.use_color_emoji", true)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the runtime configuration from viper and secrets.
func buildConfig() types.Config {
	cfg := types.Config{
		Capacities: types.CapacitiesConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("capacities.timeout"),
				UserAgent: "capsync/" + version,
			},
			APIToken: secretDefault(secrets.KeyAPIToken, viper.GetString("capacities.api_token")),
			SpaceID:  secretDefault(secrets.KeySpaceID, viper.GetString("capacities.space_id")),
		},
		Zotero: types.ZoteroConfig{
			Database:   viper.GetString("zotero.database"),
			LinkScheme: viper.GetString("zotero.link_scheme"),
		},
		Sync: types.SyncConfig{
			RequestDelay: viper.GetDuration("sync.request_delay"),
			StateFile:    viper.GetString("sync.state_file"),
			WatchWindow:  viper.GetDuration("sync.watch_window"),
		},
		Format: types.FormatConfig{
			IncludePageNumbers: viper.GetBool("format.include_page_numbers"),
			IncludeTags:        viper.GetBool("format.include_tags"),
			UseColorEmoji:      viper.GetBool("format.use_color_emoji"),
		},
	}

	home, err := os.UserHomeDir()
	if err == nil {
		if cfg.Zotero.Database == "" {
			cfg.Zotero.Database = filepath.Join(home, "Zotero", "zotero.sqlite")
		}
		if cfg.Sync.StateFile == "" {
			cfg.Sync.StateFile = filepath.Join(home, ".config", "capsync", "state.yaml")
		}
	}
	return cfg
}

// newClient builds the API client from configuration.
func newClient(cfg types.Config) *capacities.Client {
	return capacities.NewClient(cfg.Capacities)
}

// newService opens the library and wires the sync service. The caller
// must Close the returned store.
func newService(cfg types.Config) (*syncer.Service, *zotero.Store, error) {
	store, err := zotero.Open(cfg.Zotero)
	if err != nil {
		return nil, nil, err
	}

	ex := &annotations.Extractor{
		Library:    store,
		LinkScheme: cfg.Zotero.LinkScheme,
	}
	dedup := syncer.NewDedup(prefs.NewFileStore(cfg.Sync.StateFile))
	svc := syncer.NewService(newClient(cfg), ex, dedup, cfg.Format, cfg.Sync)
	return svc, store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
