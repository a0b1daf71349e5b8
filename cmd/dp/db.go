package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/drillplan/internal/catalog"
	"github.com/zulandar/drillplan/internal/config"
	"github.com/zulandar/drillplan/internal/db"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database catalog commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBImportCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the catalog database",
		Long:  "Migrates the drills table and inserts the seed drills when the table is empty.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)
	fmt.Fprintf(out, "Connected to %s catalog\n", cfg.Catalog.Backend)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	n, err := db.SeedDrills(gormDB)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(out, "Drills table already populated, seed skipped")
	} else {
		fmt.Fprintf(out, "Seeded %d drills\n", n)
	}
	return nil
}

func newDBImportCmd() *cobra.Command {
	var (
		configPath string
		from       string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a catalog file into the database",
		Long:  "Replaces the database catalog with the drills of a JSON or YAML catalog file, keeping their ids.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBImport(cmd, configPath, from)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&from, "from", "", "catalog file to import (required)")
	cmd.MarkFlagRequired("from")
	return cmd
}

func runDBImport(cmd *cobra.Command, configPath, from string) error {
	_, gormDB, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	ctx := context.Background()
	drills, err := catalog.NewFileStore(from).Load(ctx)
	if err != nil {
		return err
	}
	if err := catalog.NewDBStore(gormDB).Import(ctx, drills); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d drills from %s\n", len(drills), from)
	return nil
}

// connectFromConfig loads the config and connects to its catalog database.
// The file backend has no database.
func connectFromConfig(cmd *cobra.Command, configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Catalog.Backend == config.BackendFile {
		return nil, nil, fmt.Errorf("catalog.backend is %q: set it to sqlite or mysql to use a database", cfg.Catalog.Backend)
	}
	gormDB, err := db.Open(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

func closeDB(gormDB *gorm.DB) {
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
}
