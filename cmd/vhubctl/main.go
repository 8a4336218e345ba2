// Package main implements vhubctl, an operator CLI for querying a running
// vhubd instance's REST surface.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vhubctl:", err)
		os.Exit(1)
	}
}
