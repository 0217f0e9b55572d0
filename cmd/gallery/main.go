package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nikocoro/prubas123/internal/cli"
	"github.com/Nikocoro/prubas123/internal/client"
	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/log"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.NewWithWriter(os.Stderr, "cli", "warn")

	app, err := cli.NewApp(client.New(cfg), cfg, os.Stdin, os.Stdout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid client configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Gallery client for %s. Type help for commands.\n", cfg.APIURL)
	app.Run(ctx)
}
