// Command almactl reads the public catalog of a running Alma de Granja
// server the same way the storefront does.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
