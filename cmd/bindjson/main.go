// Command bindjson checks, formats and transcodes JSON documents with the
// bindjson engine.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bindjson:", err)
		os.Exit(1)
	}
}
