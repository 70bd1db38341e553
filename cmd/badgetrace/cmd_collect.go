package main

// ---------------------------------------------------------------------------
// cmd_collect.go — run the NATS swipe collector until interrupted
// ---------------------------------------------------------------------------

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/badgetrace-project/badgetrace/internal/analysis"
	"github.com/badgetrace-project/badgetrace/internal/collect"
)

func cmdCollect(args []string) {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	configPath := fs.String("config", "configs/default.yaml", "Config file path")
	output := fs.String("output", "", "Batch log path override")
	subject := fs.String("subject", "", "NATS subject override")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *output != "" {
		cfg.Collector.Output = *output
	}
	if *subject != "" {
		cfg.Collector.Subject = *subject
	}
	logger := analysis.NewLogger(cfg, os.Stderr)

	collector := collect.NewSwipeCollector(&cfg.Collector, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := collector.Start(ctx); err != nil {
		errorf("starting collector: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down collector")
	if err := collector.Stop(); err != nil {
		errorf("stopping collector: %v", err)
	}
	fmt.Printf("collected %d swipe(s), dropped %d malformed\n",
		collector.Received(), collector.Dropped())
}
