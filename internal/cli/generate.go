package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wikiquiz/internal/diag"
	"wikiquiz/internal/llm"
	"wikiquiz/internal/pipeline"
	"wikiquiz/internal/store"
)

var (
	genOut     string
	genTimeout time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <url>",
	Short: "Generate a quiz for a single Wikipedia article",
	Long: `Generate fetches the article, extracts its content, and produces a
multiple-choice quiz. A quiz already stored for the URL is returned without
touching the network or the model.

Example:
  wikiquiz generate https://en.wikipedia.org/wiki/Alan_Turing
  wikiquiz generate https://en.wikipedia.org/wiki/Alan_Turing --out quiz.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genOut, "out", "", "write the quiz JSON to a file instead of stdout")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 3*time.Minute, "overall generation timeout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg := loadConfig()
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("initialize LLM provider: %w", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	p := pipeline.New(cfg, provider, st, diag.NewFileSink(cfg.Diag.Dir))

	ctx, cancel := context.WithTimeout(context.Background(), genTimeout)
	defer cancel()

	record, err := p.GenerateFromURL(ctx, url)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quiz: %w", err)
	}

	if genOut != "" {
		if err := os.WriteFile(genOut, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", genOut, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote quiz: %s\n", genOut)
		}
		return nil
	}

	fmt.Println(string(data))
	return nil
}
