package main

import (
	"os"

	"github.com/quantlab/quantsim/cmd/quantsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
