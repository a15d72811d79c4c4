package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/avidor/statex/internal/config"
	"github.com/avidor/statex/internal/infrastructure"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}

	infra.Logger.Info(
		"statex starting",
		"version", cfg.Version,
		"env", cfg.Env(),
	)

	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed: ", err)
	}
	infra.Lifecycle.WaitForStartup()

	systems := infrastructure.NewSystems(cfg, infra)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := dispatch(ctx, systems, os.Args[1], os.Args[2:])

	if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		infra.Logger.Warn("shutdown incomplete", "error", err)
	}

	if runErr != nil {
		infra.Logger.Error("command failed", "command", os.Args[1], "error", runErr)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, systems *infrastructure.Systems, command string, args []string) error {
	switch command {
	case "process":
		return runProcess(ctx, systems, args)
	case "reprocess":
		return runReprocess(ctx, systems, args)
	case "runs":
		return runRuns(ctx, systems, args)
	case "list":
		return runList(ctx, systems, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: statex <command> [flags]

commands:
  process    -file <path> [-type <document type>]   submit and process a document
  reprocess  -id <uuid>                             run extraction again for a document
  runs       -id <uuid>                             list a document's extraction runs
  list       [-status <status>] [-page N] [-size N] list registered documents`)
}
