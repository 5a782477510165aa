// Command jdwpd is a demo embedder of the jdwp package: it parses a
// JDWP option string the way a VM would receive one via
// -agentlib:jdwp=..., starts a session against a Collaborator that prints
// every command packet it receives, and runs until interrupted by SIGINT
// or SIGTERM.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
