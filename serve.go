package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/camden-git/curriculumbackend/handlers"
	"github.com/camden-git/curriculumbackend/services"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg

	if cfg.ReconcileOnStart {
		reconciler := services.NewReconciler(a.db, a.store, a.locks)
		report, err := reconciler.Run(context.Background(), services.ReconcileOptions{})
		if err != nil {
			log.Printf("Warning: folder consistency check failed: %v", err)
		} else {
			log.Printf("Folder consistency check: %d people, %d folders, %d issues", report.People, report.Folders, len(report.Issues))
		}
	}

	deps := handlers.Dependencies{
		DB:       a.db,
		Validate: a.validate,
		People:   services.NewPersonService(a.db, a.store, a.locks, a.validate),
		Studies:  services.NewStudyService(a.db, a.store, a.locks, a.validate, cfg.MaxUploadSize, cfg.PublicURLPrefix),
		Works:    services.NewWorkExperienceService(a.db, a.validate),
		Auth:     services.NewAuthService(a.db, a.validate),
	}
	router := handlers.NewRouter(cfg, deps)

	if cfg.ProtectResources {
		log.Printf("Resource routes require a bearer token")
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("Server starting on http://localhost:%d\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return server.ListenAndServe()
}
