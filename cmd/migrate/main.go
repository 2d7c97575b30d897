package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"shipment-tracker/internal/core/config"
	"shipment-tracker/internal/core/database"
	"shipment-tracker/internal/core/logger"
	"shipment-tracker/internal/core/migrate"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the shipment tracker database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding the .env file")

	rootCmd.AddCommand(
		schemaCmd(&configPath, "up", "Apply every pending migration", migrate.Up),
		schemaCmd(&configPath, "down", "Roll back the most recent migration", migrate.Down),
		schemaCmd(&configPath, "status", "Show the applied state of every migration", migrate.Status),
		versionCmd(&configPath),
		toCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed).Sprint("error:"), err)
		os.Exit(1)
	}
}

type schemaFunc func(ctx context.Context, db *sql.DB, driver string) error

func schemaCmd(configPath *string, use, short string, fn schemaFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), *configPath, func(db *sql.DB, driver string) error {
				if err := fn(cmd.Context(), db, driver); err != nil {
					return err
				}
				fmt.Printf("%s migrate %s\n", color.New(color.FgGreen).Sprint("OK"), use)
				return nil
			})
		},
	}
}

func versionCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), *configPath, func(db *sql.DB, driver string) error {
				v, err := migrate.Version(cmd.Context(), db, driver)
				if err != nil {
					return err
				}
				fmt.Printf("schema version: %s\n", color.New(color.FgCyan).Sprint(v))
				return nil
			})
		},
	}
}

func toCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "to VERSION",
		Short: "Migrate up or down to VERSION",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), *configPath, func(db *sql.DB, driver string) error {
				if err := migrate.To(cmd.Context(), db, driver, args[0]); err != nil {
					return err
				}
				fmt.Printf("%s migrated to %s\n", color.New(color.FgGreen).Sprint("OK"), args[0])
				return nil
			})
		},
	}
}

func withDB(ctx context.Context, configPath string, fn func(db *sql.DB, driver string) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	client, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer client.Close()

	db, err := client.SQL()
	if err != nil {
		return err
	}
	return fn(db, client.Driver())
}
