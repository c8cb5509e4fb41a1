package cmd

import (
	"fmt"
	"strconv"

	"github.com/notgne2/ffs/index"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag <id> <name> [value]",
	Short: "Attach a tag to a point",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return errors.Errorf("%q is not a valid ID", args[0])
		}

		var content *index.TagContent
		if len(args) == 3 {
			v := args[2]
			content = &index.TagContent{Value: &v}
			if sv, err := strconv.ParseInt(v, 10, 64); err == nil {
				content.SortValue = &sv
			}
		}

		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		if err := db.TagPoint(int32(id), args[1], content); err != nil {
			return err
		}
		fmt.Printf("tagged %d with %s\n", id, args[1])
		return nil
	},
}

func init() {
	Root.AddCommand(tagCmd)
}
