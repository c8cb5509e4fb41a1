package cmd

import (
	"github.com/notgne2/ffs/ingest"
	"github.com/spf13/cobra"
)

var updateAllCmd = &cobra.Command{
	Use:   "update-all",
	Short: "Re-examine every known point's backing path and re-tag it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		return ingest.UpdateAll(db)
	},
}

func init() {
	Root.AddCommand(updateAllCmd)
}
