package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestCreate bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest a document directory into the chunk store",
	Long: `Walks the directory, extracts text from every supported file (plain text,
markdown, HTML and PDF), splits it into overlapping chunks and stores each
chunk not already present. Re-ingesting the same files adds nothing.

Without an argument the directory configured as ingest.dir is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestCreate, "create", false, "create the directory if it does not exist")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	if s.Ingester == nil {
		return errors.New("ingest service not configured")
	}

	dir := s.Settings.Ingest.Dir
	if len(args) > 0 {
		dir = args[0]
	}

	if ingestCreate {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	cmd.Printf("Ingesting %s...\n", dir)
	report, err := s.Ingester.Ingest(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Documents: %d  Skipped: %d  Failed: %d\n", report.Documents, report.Skipped, report.Failed)
	cmd.Printf("Chunks: %d new, %d duplicate (%d seen)\n", report.ChunksAdded, report.Duplicates, report.ChunksSeen)
	return nil
}
