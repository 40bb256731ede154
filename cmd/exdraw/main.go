// Package main is the entry point for the exdraw CLI tool.
package main

import (
	"github.com/jiatastic/exdraw/internal/cmd"
)

func main() {
	cmd.Execute()
}
