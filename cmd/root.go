// Package cmd wires up the tagfs CLI: config/index bootstrap plus the
// mount/add/update-all/remove/tag/untag subcommands, spf13/cobra-based in
// the style the examples pack uses it.
package cmd

import (
	"fmt"

	"github.com/notgne2/ffs/config"
	"github.com/notgne2/ffs/index"
	"github.com/notgne2/ffs/ingest"
	"github.com/spf13/cobra"
)

var configFile string

// Root is the top-level command. With a missing or unrecognized subcommand
// it prints "CNF", matching the original's catch-all match arm.
var Root = &cobra.Command{
	Use:           "tagfs",
	Short:         "A tag-indexed virtual filesystem",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("CNF")
	},
}

func init() {
	Root.PersistentFlags().StringVar(&configFile, "config", "config.toml", "path to the TOML config file")
}

// Execute runs the root command, the sole entry point main.go calls.
func Execute() error {
	return Root.Execute()
}

// bootstrap loads config and opens the index, then ingests the configured
// store and delegate directories — every subcommand (mount included) does
// this first, mirroring main.rs's main() loading the store unconditionally
// before dispatching on the subcommand.
func bootstrap() (*config.Config, *index.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	db, err := index.Open(cfg.DBURL)
	if err != nil {
		return nil, nil, err
	}

	if cfg.StoreDir != "" {
		if err := ingest.LoadStore(db, cfg.StoreDir); err != nil {
			return nil, nil, err
		}
	}
	for _, dir := range cfg.DelegateDirs {
		if err := ingest.LoadStore(db, dir); err != nil {
			return nil, nil, err
		}
	}

	return cfg, db, nil
}
