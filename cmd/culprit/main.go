package main

import "os"

var version = "dev" // set via ldflags at build time

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
