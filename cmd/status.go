package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newStatusCmd creates the 'status' subcommand, which prints the persisted
// traversal state.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Prints the persisted traversal state as JSON",
		RunE:  runStatusCommand,
	}
}

func runStatusCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	st, err := appInstance.States().Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load traversal state: %w", err)
	}

	payload := struct {
		Active         bool `json:"active"`
		QueueLen       int  `json:"queue_len"`
		Cursor         int  `json:"cursor"`
		ProcessedCount int  `json:"processed_count"`
		Remaining      int  `json:"remaining"`
	}{
		Active:         st.Active,
		QueueLen:       len(st.Queue),
		Cursor:         st.Cursor,
		ProcessedCount: st.ProcessedCount,
		Remaining:      st.Remaining(),
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
