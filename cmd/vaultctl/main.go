// Command vaultctl manages the API Vault data from a terminal. It runs
// outside the desktop shell, so the storage probe always lands on the local
// fallback store.
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
