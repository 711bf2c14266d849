// Package main provides the webplug CLI.
//
// Usage:
//
//	webplug [flags] <command>
//
// Commands:
//
//	serve   - serve the web GUI and run the message bridge
//	probe   - connect to a running editor as a headless GUI
//	params  - print the configured parameters
package main

import (
	"fmt"
	"os"

	"github.com/justyntemme/webplug/cmd/webplug/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
