package main

import (
	"fmt"
	"os"

	"meal-plan-spreadsheet/internal/cli"
	"meal-plan-spreadsheet/internal/pkg/common"
)

func main() {
	defer common.Sync()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		common.Sync()
		os.Exit(1)
	}
}
