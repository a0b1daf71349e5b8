package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/drillplan/internal/catalog"
	"github.com/zulandar/drillplan/internal/models"
	"github.com/zulandar/drillplan/internal/publish"
)

func newDrillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Drill catalog commands",
	}

	cmd.AddCommand(newDrillListCmd())
	cmd.AddCommand(newDrillAddCmd())
	cmd.AddCommand(newDrillSearchCmd())
	return cmd
}

func newDrillListCmd() *cobra.Command {
	var (
		configPath  string
		sport       string
		ageCategory string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List drills",
		Long:  "Lists the drill catalog, optionally filtered by sport and age category. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrillList(cmd, configPath, sport, ageCategory)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&sport, "sport", "", "filter by sport")
	cmd.Flags().StringVar(&ageCategory, "age", "", "filter by age category")
	return cmd
}

func runDrillList(cmd *cobra.Command, configPath, sport, ageCategory string) error {
	drills, err := loadDrills(cmd, configPath)
	if err != nil {
		return err
	}

	var out []models.Drill
	for _, d := range drills {
		if sport != "" && d.Sport != sport {
			continue
		}
		if ageCategory != "" && d.AgeCategory != ageCategory {
			continue
		}
		out = append(out, d)
	}
	printDrills(cmd.OutOrStdout(), out)
	return nil
}

func newDrillAddCmd() *cobra.Command {
	var (
		configPath string
		d          models.Drill
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a drill to the catalog",
		Long:  "Appends a drill to the catalog. The id is assigned automatically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrillAdd(cmd, configPath, d)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&d.Sport, "sport", "", "sport, e.g. hockey (required)")
	cmd.Flags().StringVar(&d.AgeCategory, "age", "", "age category, e.g. U12 (required)")
	cmd.Flags().StringVar(&d.Category, "category", "", "drill category, e.g. techniek")
	cmd.Flags().StringVar(&d.Instruction, "instruction", "", "what the players do (required)")
	cmd.Flags().StringVar(&d.Equipment, "equipment", "", "equipment needed")
	cmd.Flags().StringVar(&d.ImageURL, "image", "", "image URL")
	cmd.Flags().IntVar(&d.DurationMinutes, "duration", 10, "duration in minutes")
	cmd.MarkFlagRequired("sport")
	cmd.MarkFlagRequired("age")
	cmd.MarkFlagRequired("instruction")
	return cmd
}

func runDrillAdd(cmd *cobra.Command, configPath string, d models.Drill) error {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	id, err := store.Append(context.Background(), d)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Drill %d added\n", id)
	return nil
}

func newDrillSearchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search drills",
		Long:  "Searches drill instructions, categories and equipment. Best matches are listed first.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrillSearch(cmd, configPath, strings.Join(args, " "))
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runDrillSearch(cmd *cobra.Command, configPath, query string) error {
	drills, err := loadDrills(cmd, configPath)
	if err != nil {
		return err
	}
	printDrills(cmd.OutOrStdout(), catalog.Search(drills, query))
	return nil
}

func loadDrills(cmd *cobra.Command, configPath string) ([]models.Drill, error) {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return store.Load(context.Background())
}

func printDrills(out io.Writer, drills []models.Drill) {
	if len(drills) == 0 {
		fmt.Fprintln(out, "No drills found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSPORT\tAGE\tCATEGORY\tMIN\tINSTRUCTION")
	for _, d := range drills {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			d.ID, d.Sport, d.AgeCategory, dash(d.Category), d.DurationMinutes, publish.Truncate(d.Instruction, 50))
	}
	w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
