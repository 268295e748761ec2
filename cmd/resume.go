package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tpbkitchens/maintsync/internal/traverse"
)

// newResumeCmd creates the 'resume' subcommand, which continues an
// interrupted batch.
func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resumes an interrupted batch from its saved cursor",
		RunE:  runResumeCommand,
	}
}

func runResumeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	ctrl, cleanup, err := appInstance.NewController()
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}
	defer cleanup()

	res, err := ctrl.Resume(cmd.Context())
	switch {
	case errors.Is(err, traverse.ErrNotActive):
		return fmt.Errorf("%w (run 'maintsync run' to start one)", err)
	case err != nil:
		return fmt.Errorf("resume batch: %w", err)
	}

	appInstance.Logger().Info("batch finished",
		zap.Int("queued", res.Queued),
		zap.Int("visited", res.Visited),
		zap.Int("processed", res.Processed))
	return nil
}
