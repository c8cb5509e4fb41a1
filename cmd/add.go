package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notgne2/ffs/autotag"
	"github.com/notgne2/ffs/ingest"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <path> [tag[=value]...]",
	Short: "Ingest a single file or directory as a point",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}

		tags := make([]autotag.Entry, 0, len(args)-1)
		for _, t := range args[1:] {
			split := strings.SplitN(t, "=", 2)
			entry := autotag.Entry{Name: split[0]}
			if len(split) == 2 {
				v := split[1]
				entry.Value = &v
				if sv, err := strconv.ParseInt(v, 10, 64); err == nil {
					entry.SortValue = &sv
				}
			}
			tags = append(tags, entry)
		}

		point, err := ingest.AddPath(db, args[0], tags)
		if err != nil {
			return err
		}
		fmt.Printf("added %s as point %d\n", point.Name, point.ID)
		return nil
	},
}

func init() {
	Root.AddCommand(addCmd)
}
