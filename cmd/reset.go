package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// newResetCmd creates the 'reset' subcommand, which discards the persisted
// traversal state.
func newResetCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discards the persisted traversal state",
		Long: `Clears the work queue, cursor, and counters. An interrupted batch cannot
be resumed afterwards; the next 'run' starts from a fresh listing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResetCommand(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reset even while a batch is active")
	return cmd
}

func runResetCommand(cmd *cobra.Command, force bool) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	states := appInstance.States()
	st, err := states.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load traversal state: %w", err)
	}
	if st.Active && !force {
		return errors.New("a batch is active; pass --force to discard it")
	}

	if err := states.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset traversal state: %w", err)
	}
	appInstance.Logger().Info("traversal state cleared")
	return nil
}
