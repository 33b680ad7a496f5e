// Package batch drives extraction over many documents with a fixed-size
// worker pool. Each worker owns one document end to end; a failure on
// one document never prevents output generation for the others.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brunobiangulo/outliner"
)

// Result records the outcome for one input document. Err is non-nil when
// the document fell back to an empty extraction (soft failure) or when
// the output could not be written.
type Result struct {
	Input    string
	Output   string
	Err      error
	FellBack bool
	Duration time.Duration
}

// Summary aggregates a batch run. Results are ordered exactly as the
// inputs were, independent of completion order.
type Summary struct {
	Total     int
	Succeeded int
	FellBack  int
	Results   []Result
}

// Runner executes batches against one engine.
type Runner struct {
	engine  *outliner.Engine
	log     *slog.Logger
	workers int
}

// NewRunner builds a Runner. workers ≤ 0 sizes the pool to the available
// CPU cores.
func NewRunner(engine *outliner.Engine, log *slog.Logger, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{engine: engine, log: log, workers: workers}
}

// Run processes every input present at invocation time, writing one JSON
// output per input (same base name, .json extension) into outDir. Output
// files are attributable one-to-one to inputs regardless of completion
// order. Cancellation is document-granular: a canceled context stops
// dispatching new documents but in-flight ones still produce output.
func (r *Runner) Run(ctx context.Context, inputs []string, outDir string) (*Summary, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	summary := &Summary{Total: len(inputs), Results: make([]Result, len(inputs))}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				summary.Results[i] = r.processOne(ctx, inputs[i], outDir)
			}
		}()
	}

dispatch:
	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Undispatched documents become explicit fallback results so
			// the summary still accounts for every input.
			for j := i; j < len(inputs); j++ {
				if summary.Results[j].Input == "" {
					summary.Results[j] = Result{Input: inputs[j], Err: ctx.Err(), FellBack: true}
				}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for _, res := range summary.Results {
		if res.Err == nil {
			summary.Succeeded++
		}
		if res.FellBack {
			summary.FellBack++
		}
	}
	return summary, nil
}

// processOne extracts a single document and writes its output file. The
// output is written even for fallback results — the contract is one
// well-formed JSON per input.
func (r *Runner) processOne(ctx context.Context, input, outDir string) Result {
	start := time.Now()
	log := r.log.With("input", filepath.Base(input))

	res, err := r.engine.ExtractFile(ctx, input)
	out := Result{
		Input:    input,
		Output:   outputPath(input, outDir),
		Err:      err,
		FellBack: err != nil,
	}

	if err != nil {
		log.Warn("document fell back to empty extraction", "error", err)
	}

	if werr := writeResult(out.Output, res); werr != nil {
		log.Error("writing output", "error", werr)
		if out.Err == nil {
			out.Err = werr
		}
	}

	out.Duration = time.Since(start)
	log.Info("document processed",
		"title", res.Title,
		"headings", len(res.Outline),
		"fallback", out.FellBack,
		"duration", out.Duration.Round(time.Millisecond),
	)
	return out
}

// outputPath maps an input file to its output JSON: same base name,
// .json extension, inside outDir.
func outputPath(input, outDir string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+".json")
}

// writeResult serializes one extraction result with stable formatting so
// identical inputs produce byte-identical outputs.
func writeResult(path string, res *outliner.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// ListInputs returns the supported document files directly inside dir,
// sorted by name for deterministic batch ordering.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}
	var inputs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pdf", ".xlsx", ".pptx", ".docx", ".txt":
			inputs = append(inputs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(inputs)
	return inputs, nil
}
