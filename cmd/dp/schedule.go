package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zulandar/drillplan/internal/archive"
	"github.com/zulandar/drillplan/internal/config"
	"github.com/zulandar/drillplan/internal/models"
	"github.com/zulandar/drillplan/internal/pdf"
	"github.com/zulandar/drillplan/internal/schedule"
)

type scheduleFlags struct {
	params    schedule.Params
	pdfPath   string
	archive   bool
	noImages  bool
	forceRich bool
}

func newScheduleCmd() *cobra.Command {
	var (
		configPath string
		f          scheduleFlags
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate a training schedule",
		Long: "Builds a week of training sessions for one sport and age category and prints it. " +
			"Use --pdf to export it and --archive to store the PDF in the configured archive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, configPath, f)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&f.params.Sport, "sport", "", "sport (required)")
	cmd.Flags().StringVar(&f.params.AgeCategory, "age", "", "age category (required)")
	cmd.Flags().IntVar(&f.params.SessionCount, "sessions", 0, "sessions per week (default from config)")
	cmd.Flags().IntVar(&f.params.DrillsPerSession, "drills", 0, "drills per session (default from config)")
	cmd.Flags().IntVar(&f.params.MinutesPerDrill, "minutes", 0, "minutes per drill (default from config)")
	cmd.Flags().Uint64Var(&f.params.Seed, "seed", 0, "random seed for a reproducible schedule")
	cmd.Flags().StringVar(&f.pdfPath, "pdf", "", "write the schedule as PDF to this file")
	cmd.Flags().BoolVar(&f.archive, "archive", false, "upload the PDF to the configured archive")
	cmd.Flags().BoolVar(&f.noImages, "no-images", false, "do not download drill images for the PDF")
	cmd.Flags().BoolVar(&f.forceRich, "color", false, "style output even when not writing to a terminal")
	cmd.MarkFlagRequired("sport")
	cmd.MarkFlagRequired("age")
	return cmd
}

func runSchedule(cmd *cobra.Command, configPath string, f scheduleFlags) error {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}
	applyDefaults(&f.params, cfg.Defaults)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	s, err := schedule.Build(ctx, store, f.params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderSchedule(s, f.forceRich || isTerminal(out)))

	if f.pdfPath == "" && !f.archive {
		return nil
	}

	var src pdf.ImageSource
	if !f.noImages {
		src = newFetcher(cfg)
	}
	var buf bytes.Buffer
	if err := pdf.Render(ctx, &buf, s, src); err != nil {
		return err
	}

	if f.pdfPath != "" {
		if err := os.WriteFile(f.pdfPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintf(out, "PDF written to %s\n", f.pdfPath)
	}
	if f.archive {
		sink, err := archive.Open(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		loc, err := sink.Put(ctx, archive.Key(s), bytes.NewReader(buf.Bytes()), archive.ContentTypePDF)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Archived to %s\n", loc)
	}
	return nil
}

// applyDefaults fills unset counts from the configured form defaults.
func applyDefaults(p *schedule.Params, d config.DefaultsConfig) {
	if p.SessionCount == 0 {
		p.SessionCount = d.SessionCount
	}
	if p.DrillsPerSession == 0 {
		p.DrillsPerSession = d.DrillsPerSession
	}
	if p.MinutesPerDrill == 0 {
		p.MinutesPerDrill = d.MinutesPerDrill
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type scheduleStyles struct {
	title   lipgloss.Style
	meta    lipgloss.Style
	notice  lipgloss.Style
	session lipgloss.Style
	label   lipgloss.Style
	box     lipgloss.Style
}

func newScheduleStyles(rich bool) scheduleStyles {
	if !rich {
		plain := lipgloss.NewStyle()
		return scheduleStyles{plain, plain, plain, plain, plain, plain}
	}
	return scheduleStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		notice:  lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#FF9800")),
		session: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#36A64F")),
		label:   lipgloss.NewStyle().Bold(true),
		box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5B8DEF")).Padding(0, 1),
	}
}

// renderSchedule formats s for the terminal. Without rich styling the
// output is plain text.
func renderSchedule(s *models.Schedule, rich bool) string {
	st := newScheduleStyles(rich)
	var b strings.Builder

	b.WriteString(st.title.Render(fmt.Sprintf("Training schedule %s %s", s.Sport, s.AgeCategory)))
	b.WriteString("\n")
	b.WriteString(st.meta.Render(fmt.Sprintf("%d sessions, %d drills of %d minutes each (seed %d)",
		len(s.Sessions), s.PerSession, s.MinutesPerDrill, s.Seed)))
	b.WriteString("\n")
	if notice := s.Notice(); notice != "" {
		b.WriteString(st.notice.Render(notice))
		b.WriteString("\n")
	}

	for _, sess := range s.Sessions {
		var body strings.Builder
		body.WriteString(st.session.Render(sess.Label))
		if len(sess.Entries) == 0 {
			body.WriteString("\n  (no drills)")
		}
		for _, e := range sess.Entries {
			body.WriteString("\n")
			body.WriteString(st.label.Render(e.Label))
			fmt.Fprintf(&body, "\n  Instruction: %s", e.Instruction)
			fmt.Fprintf(&body, "\n  Equipment: %s", e.Equipment)
			fmt.Fprintf(&body, "\n  Duration: %d minutes", e.Minutes)
			if e.ImageURL != "" {
				fmt.Fprintf(&body, "\n  Image: %s", e.ImageURL)
			}
		}
		b.WriteString("\n")
		if rich {
			b.WriteString(st.box.Render(body.String()))
		} else {
			b.WriteString(body.String())
		}
		b.WriteString("\n")
	}
	return b.String()
}
