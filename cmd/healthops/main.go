// Command healthops runs configured dependency checks, once from the
// command line or continuously behind HTTP health endpoints.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errUnhealthy) {
			fmt.Fprintln(os.Stderr, "healthops:", err)
		}
		os.Exit(1)
	}
}
