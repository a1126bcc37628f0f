package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the question-answering pipeline over HTTP:

  GET  /health     liveness
  POST /ask        {"query": "..."}
  POST /retrieve   {"query": "...", "top_k": 3}
  POST /ingest     {"dir": "..."}
  GET  /stats      chunk count

Without --addr the configured server.addr is used.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	if s.Conversation == nil || s.Retrieval == nil || s.Ingester == nil {
		return errors.New("services not configured")
	}
	ingestOnStart(cmd, s)

	addr := serveAddr
	if addr == "" {
		addr = s.Settings.Server.Addr
	}

	handler := api.NewRouter(api.Ports{
		Conversation: s.Conversation,
		Retrieval:    s.Retrieval,
		Ingester:     s.Ingester,
		DefaultDir:   s.Settings.Ingest.Dir,
	}, api.DefaultRequestTimeout)

	cmd.Printf("HTTP API listening on %s\n", addr)
	return api.Serve(cmd.Context(), addr, handler)
}
