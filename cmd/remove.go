package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a point and its tag joins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return errors.Errorf("%q is not a valid ID", args[0])
		}

		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		if err := db.RemovePoint(int32(id)); err != nil {
			return err
		}
		fmt.Printf("deleted %d\n", id)
		return nil
	},
}

func init() {
	Root.AddCommand(removeCmd)
}
