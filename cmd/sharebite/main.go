package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sharebite/internal/apiclient"
	"sharebite/internal/cli"
	"sharebite/internal/config"
	"sharebite/internal/logger"
	"sharebite/internal/session"
	"sharebite/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	logger.InitializeWithWriter(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	store, err := storage.New(cfg.Client.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open client storage: %v\n", err)
		return 1
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.New(cfg.Client.BaseURL, time.Duration(cfg.Client.TimeoutSeconds)*time.Second)
	sess := session.New(client, store)
	client.SetTokenSource(sess)
	client.SetUnauthorizedHandler(sess.Invalidate)
	if err := sess.Restore(ctx); err != nil {
		logger.Warn("Could not restore session", "error", err)
	}

	app := cli.NewApp(client, sess, store, os.Stdin, os.Stdout)
	code := app.Run(ctx, flag.Args())
	app.Close()
	sess.Wait()
	return code
}
