package main

import (
	"strings"
	"testing"

	"github.com/zulandar/drillplan/internal/config"
	"github.com/zulandar/drillplan/internal/schedule"
)

func TestPublishCmd_NoChatConfigured(t *testing.T) {
	cfg := writeConfig(t, "")
	_, err := run(t, "publish", "--config", cfg, "--sport", "hockey", "--age", "U12")
	if err == nil {
		t.Fatal("expected error without chat platforms")
	}
	if !strings.Contains(err.Error(), "no chat platform configured") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestAdaptersFromConfig(t *testing.T) {
	adapters, err := adaptersFromConfig(config.PublishConfig{
		Slack:   config.ChatConfig{BotToken: "xoxb-test", ChannelID: "C1"},
		Discord: config.ChatConfig{BotToken: "discord-test", ChannelID: "123"},
	})
	if err != nil {
		t.Fatalf("adaptersFromConfig: %v", err)
	}
	if len(adapters) != 2 {
		t.Fatalf("adapters = %d, want 2", len(adapters))
	}
	if adapters[0].Name() != "slack" || adapters[1].Name() != "discord" {
		t.Errorf("names = %s, %s", adapters[0].Name(), adapters[1].Name())
	}
	for _, a := range adapters {
		a.Close()
	}
}

func TestAdaptersFromConfig_SkipsIncomplete(t *testing.T) {
	_, err := adaptersFromConfig(config.PublishConfig{
		Slack: config.ChatConfig{BotToken: "xoxb-test"},
	})
	if err == nil {
		t.Fatal("slack without channel should not count as configured")
	}
}

func TestMergeParams(t *testing.T) {
	base := schedule.Params{Sport: "hockey", AgeCategory: "U12", SessionCount: 2, DrillsPerSession: 2, MinutesPerDrill: 10}

	got := mergeParams(base, schedule.Params{})
	if got != base {
		t.Errorf("empty override changed params: %+v", got)
	}

	got = mergeParams(base, schedule.Params{AgeCategory: "U10", DrillsPerSession: 4})
	want := schedule.Params{Sport: "hockey", AgeCategory: "U10", SessionCount: 2, DrillsPerSession: 4, MinutesPerDrill: 10}
	if got != want {
		t.Errorf("mergeParams = %+v, want %+v", got, want)
	}
}
