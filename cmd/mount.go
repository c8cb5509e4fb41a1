package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/notgne2/ffs/vfs"
	"github.com/spf13/cobra"
)

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Mount the tag filesystem at mountpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		resolver := vfs.NewResolver(db)
		return vfs.Serve(ctx, args[0], resolver)
	},
}

func init() {
	Root.AddCommand(mountCmd)
}
