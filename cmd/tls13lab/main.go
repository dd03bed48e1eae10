// Command tls13lab runs the from-scratch TLS 1.3 server engine behind a
// small cobra CLI, in the style of keploy-keploy's cmd/root.go +
// cmd/keploy/keploy.go split between command wiring and the process
// entrypoint.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
