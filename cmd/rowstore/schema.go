package main

import (
	"log"

	"github.com/spf13/cobra"

	"rowstore/internal/entity"
	"rowstore/internal/repository/sqlrepo"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or drop the backing table directly",
	Long: `schema manages the people table with idempotent DDL. This is the
throwaway-database path; use "rowstore migrate" for managed deployments.`,
}

var schemaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Ensure the people table exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, dialect, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		repo, err := sqlrepo.New(db, dialect, entity.PersonMapping())
		if err != nil {
			return err
		}
		if err := repo.CreateSchema(ctx); err != nil {
			return err
		}
		log.Println("Schema created")
		return nil
	},
}

var schemaDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the people table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, dialect, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		repo, err := sqlrepo.New(db, dialect, entity.PersonMapping())
		if err != nil {
			return err
		}
		if err := repo.DropSchema(ctx); err != nil {
			return err
		}
		log.Println("Schema dropped")
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaCreateCmd)
	schemaCmd.AddCommand(schemaDropCmd)
	rootCmd.AddCommand(schemaCmd)
}
