package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chunk store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	if s.Retrieval == nil {
		return errors.New("retrieval service not configured")
	}

	n, err := s.Retrieval.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	cmd.Printf("Backend: %s\n", s.Settings.Storage.Backend)
	if s.StorePath != "" {
		cmd.Printf("Store:   %s\n", s.StorePath)
	}
	cmd.Printf("Chunks:  %d\n", n)
	return nil
}
