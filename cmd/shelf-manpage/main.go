package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/shelf/cmd/shelf"
	"github.com/arthur-debert/shelf/internal/version"
)

// Writes one man page per command into the directory given as the only
// argument, or the root page to stdout without one.
func main() {
	rootCmd := shelf.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "SHELF",
		Section: "1",
		Source:  "shelf " + version.Resolved(),
		Manual:  "shelf manual",
	}

	var err error
	if len(os.Args) > 1 {
		if err = os.MkdirAll(os.Args[1], 0755); err == nil {
			err = doc.GenManTree(rootCmd, header, os.Args[1])
		}
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
