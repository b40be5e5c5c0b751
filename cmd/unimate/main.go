// Command unimate serves and queries the UniMate listing search.
//
// Usage:
//
//	unimate serve  [--config unimate.yaml] [--port 8080]
//	unimate search [--q wifi] [--type Single] [--limit 10] ...
//	unimate seed   --file fixtures.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
