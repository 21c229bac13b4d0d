package main

import (
	"fmt"
	"os"

	"github.com/rustyeddy/fxrisk/cmd/fxvar/cmd"
	"github.com/rustyeddy/fxrisk/report"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, report.ErrorText(err))
		os.Exit(1)
	}
}
