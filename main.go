package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/camden-git/curriculumbackend/config"
	"github.com/camden-git/curriculumbackend/database"
	"github.com/camden-git/curriculumbackend/media"
	"github.com/camden-git/curriculumbackend/services"
	"github.com/camden-git/curriculumbackend/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Curriculum backend - people, studies and their folder trees",
	Long: `Curriculum backend serves the résumé REST API and keeps every person's
{id}-{first}_{last} folder tree in step with the people table.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// app holds what every command opens at startup.
type app struct {
	cfg      config.Config
	db       *gorm.DB
	store    *media.LocalStorage
	locks    *services.KeyedMutex
	validate *validation.Validator
}

func bootstrap() (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	for _, p := range []string{cfg.UploadsPath, filepath.Dir(cfg.DatabasePath)} {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath, cfg.LogSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store, err := media.NewLocalStorage(cfg.UploadsPath)
	if err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to initialize uploads store: %w", err)
	}

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing person folders in: %s", cfg.UploadsPath)

	return &app{
		cfg:      cfg,
		db:       db,
		store:    store,
		locks:    services.NewKeyedMutex(),
		validate: validation.New(),
	}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		log.Printf("Warning: failed to close database: %v", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
