// Command filemgr exposes file manager operations on the command line.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/filemgr/internal/cli"
)

// version is set at build time.
var version = "unknown - unofficial build"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
