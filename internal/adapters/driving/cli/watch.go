package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they are created or modified",
	Long: `Watches the directory tree and ingests every file that is created or
modified. Deleted files keep their chunks. Stops on interrupt.

Without an argument the directory configured as ingest.dir is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	if s.Watcher == nil {
		return errors.New("watch service not configured")
	}

	dir := s.Settings.Ingest.Dir
	if len(args) > 0 {
		dir = args[0]
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)...\n", dir)
	if err := s.Watcher.Watch(cmd.Context(), dir); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
