package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newSyncCmd creates the 'sync' subcommand for ad-hoc single-job refreshes.
func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <detail-url>",
		Short: "Syncs a single job from its detail page URL",
		Long: `Fetches one detail page, extracts its record, and upserts it without
touching batch state. Useful to refresh a single job after a portal-side
change.`,
		Args: cobra.ExactArgs(1),
		RunE: runSyncCommand,
	}
}

func runSyncCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	ctrl, cleanup, err := appInstance.NewController()
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}
	defer cleanup()

	rec, err := ctrl.SyncOne(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("sync job: %w", err)
	}

	appInstance.Logger().Info("job synced",
		zap.String("job_number", rec.JobNumber),
		zap.Int("items", len(rec.Items)),
		zap.Int("delivered", rec.DeliveredCount()))
	return nil
}
