package main

import (
	"os"

	"github.com/The-Policy-Posse/Network-Graph-1/bootstrap"
)

func main() {
	cmd := newBuildCmd(deps{openStore: bootstrap.Store})
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
