package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/specforge/specinit/cmd/specinit"
	"github.com/specforge/specinit/internal/version"
)

func main() {
	rootCmd := specinit.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "SPECINIT",
		Section: "1",
		Source:  "specinit " + version.Version,
		Manual:  "specinit manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
