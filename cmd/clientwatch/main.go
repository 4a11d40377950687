package main

import (
	"os"

	"github.com/wonny/clientwatch/cmd/clientwatch/commands"
)

// main is the entry point for the clientwatch CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/clientwatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
