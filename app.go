package main

import (
	"log/slog"
	"os"

	"github.com/ajurgis/repotally/cmd"
)

func main() {
	level := slog.LevelInfo
	if hasVerboseFlag(os.Args[1:]) {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	cmd.Run()
}

// hasVerboseFlag checks for --verbose before flag parsing so that logging
// is configured for the whole run, config loading included.
func hasVerboseFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--verbose" {
			return true
		}
	}
	return false
}
