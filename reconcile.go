package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/camden-git/curriculumbackend/services"
	"github.com/spf13/cobra"
)

var (
	reconcileFix          bool
	reconcilePruneOrphans bool
	reconcileJSON         bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare person rows with their folder trees",
	Long: `Scan the uploads directory and report every person without a folder, folder
without a person, missing subdirectory and folder left under an old name.

Examples:
  curriculum reconcile                   # report only
  curriculum reconcile --fix             # create missing trees, rename stale folders
  curriculum reconcile --prune-orphans   # also remove folders with no person`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().BoolVar(&reconcileFix, "fix", false, "Create missing folders and rename stale ones")
	reconcileCmd.Flags().BoolVar(&reconcilePruneOrphans, "prune-orphans", false, "Remove folders that belong to no person")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Output the report in JSON format")
}

func runReconcile(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	reconciler := services.NewReconciler(a.db, a.store, a.locks)
	report, runErr := reconciler.Run(ctx, services.ReconcileOptions{
		Fix:          reconcileFix,
		PruneOrphans: reconcilePruneOrphans,
	})
	if report == nil {
		return runErr
	}

	if reconcileJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Printf("%d people, %d folders, %d issues\n", report.People, report.Folders, len(report.Issues))
		for _, issue := range report.Issues {
			fmt.Println("  " + issue.String())
		}
	}
	return runErr
}
