package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rowstore/internal/config"
	"rowstore/internal/entity"
	"rowstore/internal/repository"
	"rowstore/internal/repository/cached"
	"rowstore/internal/repository/sqlrepo"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rowstore",
	Short: "Maintenance CLI for the rowstore people table",
	Long: `rowstore manages the entity store from the command line: schema
bootstrap, versioned migrations, and person records.`,
	SilenceUsage: true,
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env for local development; absence is fine
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the explicit --config path or falls back to discovery.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, _, err := config.LoadFromPath(configPath)
		return cfg, err
	}
	cfg, path, err := config.Load()
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	}
	return cfg, nil
}

// openDB opens and pings the configured database.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, sqlrepo.Dialect, error) {
	dialect, err := sqlrepo.ForDriver(cfg.Database.Driver)
	if err != nil {
		return nil, sqlrepo.Dialect{}, err
	}

	db, err := sqlrepo.Open(dialect, cfg.Database.DSN)
	if err != nil {
		return nil, sqlrepo.Dialect{}, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, sqlrepo.Dialect{}, fmt.Errorf("failed to reach database: %w", err)
	}
	return db, dialect, nil
}

// openPeople builds the person repository with decorators per config.
func openPeople(ctx context.Context) (repository.Repository[int64, entity.Person], func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, dialect, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closer := func() { db.Close() }

	mapping := entity.PersonMapping()
	repo, err := sqlrepo.New(db, dialect, mapping)
	if err != nil {
		closer()
		return nil, nil, err
	}

	var people repository.Repository[int64, entity.Person] = repo
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		people = cached.New(people, mapping, ttl)
	}
	return people, closer, nil
}
