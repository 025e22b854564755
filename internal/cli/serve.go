package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wikiquiz/internal/diag"
	"wikiquiz/internal/llm"
	"wikiquiz/internal/pipeline"
	"wikiquiz/internal/server"
	"wikiquiz/internal/store"
)

var (
	serveAddr     string
	serveDBPath   string
	serveProvider string
	serveModel    string
	serveDiagDir  string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WikiQuiz HTTP API server",
	Long: `Serve starts the HTTP API:

  POST   /api/generate   generate (or return the cached) quiz for a URL
  GET    /api/history    list generated quizzes, newest first
  GET    /api/quiz/:id   fetch one quiz
  GET    /api/preview    preview an article title for a URL
  DELETE /api/quiz/:id   delete a quiz

Example:
  wikiquiz serve --addr :8080 --db wikiquiz.db --llm-provider openai`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "quiz database path (default from config)")
	serveCmd.Flags().StringVar(&serveProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	serveCmd.Flags().StringVar(&serveModel, "llm-model", "", "LLM model name")
	serveCmd.Flags().StringVar(&serveDiagDir, "diag-dir", "", "directory for unparseable model output dumps")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDBPath != "" {
		cfg.Store.Path = serveDBPath
	}
	if serveProvider != "" {
		cfg.LLM.Provider = serveProvider
	}
	if serveModel != "" {
		cfg.LLM.Model = serveModel
	}
	if serveDiagDir != "" {
		cfg.Diag.Dir = serveDiagDir
	}

	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("initialize LLM provider: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if !provider.IsAvailable(checkCtx) {
		fmt.Fprintf(os.Stderr, "Warning: LLM provider %q is not reachable; generation requests will fail\n", provider.Name())
	}
	cancel()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	sink := diag.NewFileSink(cfg.Diag.Dir)
	p := pipeline.New(cfg, provider, st, sink)
	h := server.NewHandler(p)

	fmt.Fprintf(os.Stderr, "Listening on %s (provider=%s, db=%s)\n", cfg.Server.Addr, provider.Name(), cfg.Store.Path)
	return h.Router().Run(cfg.Server.Addr)
}
