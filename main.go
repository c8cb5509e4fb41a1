// Command tagfs mounts a tag-indexed virtual filesystem over a relational
// index of points and tags, with ingestion, tagging, and maintenance
// subcommands. See cmd for the full command surface.
package main

import (
	"os"

	"github.com/notgne2/ffs/cmd"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := cmd.Execute(); err != nil {
		logrus.WithError(err).Error("tagfs exiting")
		os.Exit(1)
	}
}
