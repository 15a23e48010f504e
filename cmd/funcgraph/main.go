// Command funcgraph exports the ASTs and control-flow graphs of the
// functions in a C, C++ or Go repository into a SQLite graph database.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
