package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Meriku/green-screen-video-to-png-images/config"
	"github.com/Meriku/green-screen-video-to-png-images/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(2)
	}
	cfg.BindFlags(flag.CommandLine)
	help := flag.Bool("help", false, "显示帮助信息")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := removeGreenScreen(ctx, cfg, log)
	if err != nil {
		log.Fatal("green screen removal failed", zap.Error(err))
	}
	log.Info("done",
		zap.Int("frames", len(summary.Processed)),
		zap.Ints("skipped", summary.Skipped),
		zap.String("manifest", summary.Manifest),
	)
}
