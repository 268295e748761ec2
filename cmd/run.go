package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tpbkitchens/maintsync/internal/traverse"
)

// newRunCmd creates the 'run' subcommand, which starts a fresh batch.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Starts a new batch over the maintenance listing",
		Long: `Builds a fresh work queue from the portal's maintenance listing page and
visits every job in order, syncing each one to the remote store. Refuses
to start while an interrupted batch is still active; use 'resume' to
finish it or 'reset' to discard it.`,
		RunE: runBatchCommand,
	}
}

func runBatchCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	ctrl, cleanup, err := appInstance.NewController()
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}
	defer cleanup()

	res, err := ctrl.Run(cmd.Context())
	switch {
	case errors.Is(err, traverse.ErrAlreadyRunning):
		return fmt.Errorf("%w (run 'maintsync resume' or 'maintsync reset')", err)
	case errors.Is(err, traverse.ErrEmptyQueue):
		appInstance.Logger().Info("listing has no jobs; nothing to do")
		return nil
	case err != nil:
		return fmt.Errorf("run batch: %w", err)
	}

	appInstance.Logger().Info("batch finished",
		zap.Int("queued", res.Queued),
		zap.Int("visited", res.Visited),
		zap.Int("processed", res.Processed))
	return nil
}
