package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/drillplan/internal/publish"
	"github.com/zulandar/drillplan/internal/schedule"
)

func newPublishCmd() *cobra.Command {
	var (
		configPath string
		params     schedule.Params
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Post a schedule to chat now",
		Long: "Generates a schedule and posts it to every configured chat platform. Flags override " +
			"the request configured under publish.request.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, configPath, params)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&params.Sport, "sport", "", "sport (default from publish.request)")
	cmd.Flags().StringVar(&params.AgeCategory, "age", "", "age category (default from publish.request)")
	cmd.Flags().IntVar(&params.SessionCount, "sessions", 0, "sessions per week")
	cmd.Flags().IntVar(&params.DrillsPerSession, "drills", 0, "drills per session")
	cmd.Flags().IntVar(&params.MinutesPerDrill, "minutes", 0, "minutes per drill")
	return cmd
}

func runPublish(cmd *cobra.Command, configPath string, override schedule.Params) error {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}
	params := mergeParams(publish.Params(cfg.Publish.Request), override)

	adapters, err := adaptersFromConfig(cfg.Publish)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	pub := publish.NewPublisher(store, adapters...)
	defer pub.Close()

	s, err := pub.Publish(context.Background(), params)
	if s != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Published %s %s schedule with %d sessions\n",
			s.Sport, s.AgeCategory, len(s.Sessions))
	}
	return err
}

// mergeParams returns base with every non-zero field of override applied.
func mergeParams(base, override schedule.Params) schedule.Params {
	if override.Sport != "" {
		base.Sport = override.Sport
	}
	if override.AgeCategory != "" {
		base.AgeCategory = override.AgeCategory
	}
	if override.SessionCount != 0 {
		base.SessionCount = override.SessionCount
	}
	if override.DrillsPerSession != 0 {
		base.DrillsPerSession = override.DrillsPerSession
	}
	if override.MinutesPerDrill != 0 {
		base.MinutesPerDrill = override.MinutesPerDrill
	}
	return base
}
