// Command kqtplay loads a Kunquat-style project directory and renders it,
// validates it, or benchmarks its mixing throughput.
package main

import (
	"fmt"
	"os"

	"github.com/kunquat/kqsynth/internal/conf"
	"github.com/kunquat/kqsynth/internal/logging"
)

func main() {
	settings := conf.Get()
	logging.Init(settings.Logging.Path)

	root := buildRootCommand(settings)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
