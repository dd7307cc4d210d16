package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	kittendexcmd "github.com/louisbranch/kittendex/internal/cmd/kittendex"
	"github.com/louisbranch/kittendex/internal/platform/config"
)

func main() {
	cfg, err := kittendexcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kittendexcmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("%v", err)
	}
}
