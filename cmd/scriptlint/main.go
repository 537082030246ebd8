// Package main is the entry point for the scriptlint CLI tool.
package main

import (
	"github.com/hargabyte/scriptlint/internal/cmd"
)

func main() {
	cmd.Execute()
}
