package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/drillplan/internal/publish"
	"github.com/zulandar/drillplan/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Long: "Serves the schedule form, the catalog pages and the JSON API. When publish.cron " +
			"is configured, schedules are also posted to chat on that schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config, 8080)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	var wg sync.WaitGroup
	if cfg.Publish.Cron != "" {
		adapters, err := adaptersFromConfig(cfg.Publish)
		if err != nil {
			return err
		}
		pub := publish.NewPublisher(store, adapters...)
		defer pub.Close()

		sched, err := publish.NewScheduler(cfg.Publish.Cron, publish.PublishJob(pub, publish.Params(cfg.Publish.Request)))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Publishing %s %s schedules on %q\n",
			cfg.Publish.Request.Sport, cfg.Publish.Request.AgeCategory, cfg.Publish.Cron)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Run(ctx)
		}()
	}

	err = web.Start(ctx, web.StartOpts{
		Store:    store,
		Defaults: cfg.Defaults,
		Images:   newFetcher(cfg),
		Port:     port,
		Out:      cmd.OutOrStdout(),
	})
	cancel()
	wg.Wait()
	return err
}
