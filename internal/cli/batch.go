package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wikiquiz/internal/diag"
	"wikiquiz/internal/llm"
	"wikiquiz/internal/model"
	"wikiquiz/internal/pipeline"
	"wikiquiz/internal/store"
	"wikiquiz/internal/worker"
)

var (
	batchWorkers int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Generate quizzes for a list of article URLs",
	Long: `Batch reads article URLs from a file (one per line, # comments allowed)
and generates quizzes for all of them through a worker pool. URLs that
already have a stored quiz are skipped by the cache.

Example:
  wikiquiz batch urls.txt --workers 3`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 2, "number of concurrent generations")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 3*time.Minute, "per-URL generation timeout")
}

// batchJob generates one quiz inside the worker pool.
type batchJob struct {
	url      string
	pipeline *pipeline.Pipeline
	timeout  time.Duration
}

// batchResult reports one URL's outcome.
type batchResult struct {
	url    string
	record *model.QuizRecord
	err    error
}

func (r batchResult) GetError() error { return r.err }

func (j batchJob) Execute(ctx context.Context) worker.Result {
	jobCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	record, err := j.pipeline.GenerateFromURL(jobCtx, j.url)
	return batchResult{url: j.url, record: record, err: err}
}

func runBatch(cmd *cobra.Command, args []string) error {
	urls, err := readURLFile(args[0])
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", args[0])
	}

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

	pool := worker.NewPool(batchWorkers)
	pool.Start()
	for _, url := range urls {
		pool.Submit(batchJob{url: url, pipeline: p, timeout: batchTimeout})
	}

	results := pool.Wait()

	failed := 0
	for _, result := range results {
		r := result.(batchResult)
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.url, r.err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s → quiz %d (%d questions)\n", r.url, r.record.ID, len(r.record.Questions))
	}

	fmt.Fprintf(os.Stderr, "\n%d/%d succeeded\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs failed", failed, len(results))
	}
	return nil
}

// readURLFile reads one URL per line, skipping blanks and # comments.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return urls, nil
}
