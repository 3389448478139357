// Command primus finds manual, repetitive work described in documents,
// files and web pages, and uses hosted LLMs to plan its automation.
//
// Usage:
//
//	# Scan a directory of runbooks
//	primus scan ./docs
//
//	# Scan a page and analyze every task found
//	primus scan https://wiki.example.com/ops --analyze
//
//	# Generate an automation script
//	primus generate "Rename scanned invoices by vendor" --output rename.py
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	if err := a.execute(ctx, a.rootCmd()); err != nil {
		os.Exit(1)
	}
}
