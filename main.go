// Package main provides the entry point for the dirsend CLI tool.
// It delegates execution to the cmd package.
package main

import (
	"dirsend/cmd"
)

func main() {
	cmd.Execute()
}
