// Package main queues one automation job and exits.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/louisbranch/tournament.archive/internal/platform/config"
	automationsqlite "github.com/louisbranch/tournament.archive/internal/services/automation/storage/sqlite"
	"github.com/louisbranch/tournament.archive/internal/tools/enqueue"
)

func main() {
	var defaults enqueue.Config
	if err := config.ParseEnv(&defaults); err != nil {
		config.Exitf("parse env: %v", err)
	}
	cfg, err := enqueue.ParseConfig(flag.CommandLine, os.Args[1:], defaults)
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	store, err := automationsqlite.Open(cfg.DBPath)
	if err != nil {
		config.Exitf("open automation store: %v", err)
	}

	runErr := enqueue.Run(context.Background(), cfg, store, os.Stdout)
	if err := store.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		config.Exitf("enqueue: %v", runErr)
	}
}
