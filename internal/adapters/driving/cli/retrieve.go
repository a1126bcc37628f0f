package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	retrieveTopK int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the chunks most relevant to a query",
	Long: `Ranks stored chunks against the query without calling a language model.
Without --top-k the configured rag.top_k is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", -1, "maximum number of chunks (default rag.top_k)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	if s.Retrieval == nil {
		return errors.New("retrieval service not configured")
	}

	topK := retrieveTopK
	if topK < 0 {
		topK = s.Settings.RAG.TopK
	}

	chunks, err := s.Retrieval.Search(cmd.Context(), strings.Join(args, " "), topK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return outputChunksJSON(cmd, chunks)
	}
	outputChunks(cmd, chunks)
	return nil
}

type chunkJSON struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	Position    int    `json:"position"`
	ContentHash string `json:"content_hash"`
}

func outputChunksJSON(cmd *cobra.Command, chunks []domain.Chunk) error {
	out := make([]chunkJSON, len(chunks))
	for i, c := range chunks {
		out[i] = chunkJSON{Text: c.Text, Source: c.SourceLabel, Position: c.Position, ContentHash: c.ContentHash}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputChunks(cmd *cobra.Command, chunks []domain.Chunk) {
	if len(chunks) == 0 {
		cmd.Println(domain.NoRelevantInformation)
		return
	}
	for i, c := range chunks {
		// Format: [N] source#position
		cmd.Printf("[%d] %s#%d\n", i+1, c.SourceLabel, c.Position)
		cmd.Printf("    %s\n", strings.ReplaceAll(c.Text, "\n", "\n    "))
		cmd.Println()
	}
}
