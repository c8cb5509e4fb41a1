package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var untagCmd = &cobra.Command{
	Use:   "untag <id> <tag-expr>",
	Short: "Remove the first tag matched by tag-expr from a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return errors.Errorf("%q is not a valid ID", args[0])
		}

		_, db, err := bootstrap()
		if err != nil {
			return err
		}

		tag, err := db.Untag(int32(id), args[1])
		if err != nil {
			return err
		}
		if tag == nil {
			fmt.Printf("tag %q not found\n", args[1])
			return nil
		}
		fmt.Printf("removed tag %q (id %d) from %d\n", args[1], tag.ID, id)
		return nil
	},
}

func init() {
	Root.AddCommand(untagCmd)
}
