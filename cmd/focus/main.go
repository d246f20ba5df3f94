package main

import (
	"os"

	"github.com/grovetools/focus/cli"
	"github.com/grovetools/focus/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose, os.Stderr).Handle(err)
		os.Exit(1)
	}
}
