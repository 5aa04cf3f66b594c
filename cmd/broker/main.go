// Package main is the entry point for the broker binary.
package main

import (
	"fmt"
	"os"

	"github.com/adway7103/broker-demo/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
