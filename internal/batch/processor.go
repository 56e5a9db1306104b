// Package batch converts many OBJ files concurrently.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/pkg/formats"
	"github.com/Faultbox/objmesh/pkg/mesh"
)

// ErrDuplicateOutput is reported for an input whose output path is already
// claimed by an earlier input of the same run.
var ErrDuplicateOutput = errors.New("output path already used by another input")

// Config holds the settings shared by every job of a run.
type Config struct {
	OutputDir    string
	Mode         string
	Attribute    mesh.AttributeMode
	NameEncoding string
	Workers      int         // 0 = runtime.NumCPU()
	Logger       *zap.Logger // nil disables logging
}

// Result holds the outcome of converting one file.
type Result struct {
	Input    string
	Output   string
	Vertices int
	Indices  int
	Duration time.Duration
	Err      error
}

// OutputPath returns where a converted input is written.
func OutputPath(outputDir, input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outputDir, base+".omsh")
}

// Run converts all inputs using a worker pool. Results are in input order;
// a failed file never stops the others. Inputs that map to the same output
// path are converted only once: later ones fail with ErrDuplicateOutput.
func Run(cfg Config, inputs []string) []Result {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(inputs))
	var processed, failed atomic.Int64
	start := time.Now()

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				r := processFile(cfg, inputs[idx], log)
				results[idx] = r
				processed.Add(1)
				if r.Err != nil {
					failed.Add(1)
					log.Warn("conversion failed", zap.String("input", r.Input), zap.Error(r.Err))
					continue
				}
				log.Debug("converted",
					zap.String("input", r.Input),
					zap.String("output", r.Output),
					zap.Int("vertices", r.Vertices),
					zap.Int("indices", r.Indices),
					zap.Duration("took", r.Duration))
			}
		}()
	}

	for _, i := range claimOutputs(cfg.OutputDir, inputs, results) {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, r := range results {
		if errors.Is(r.Err, ErrDuplicateOutput) {
			failed.Add(1)
			log.Warn("conversion skipped", zap.String("input", r.Input), zap.Error(r.Err))
		}
	}

	log.Info("batch finished",
		zap.Int64("processed", processed.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Int("workers", workers),
		zap.Duration("took", time.Since(start)))

	return results
}

// claimOutputs assigns each output path to its first input and returns the
// indices to convert. Losers get their Result filled in with the error.
func claimOutputs(outputDir string, inputs []string, results []Result) []int {
	owner := make(map[string]int, len(inputs))
	pending := make([]int, 0, len(inputs))
	for i, input := range inputs {
		out := OutputPath(outputDir, input)
		if first, ok := owner[out]; ok {
			results[i] = Result{
				Input:  input,
				Output: out,
				Err:    fmt.Errorf("%s: %w (%s)", out, ErrDuplicateOutput, inputs[first]),
			}
			continue
		}
		owner[out] = i
		pending = append(pending, i)
	}
	return pending
}

func processFile(cfg Config, input string, log *zap.Logger) Result {
	start := time.Now()
	r := Result{Input: input, Output: OutputPath(cfg.OutputDir, input)}

	obj, err := formats.ParseOBJFile(input, formats.ParseOptions{NameEncoding: cfg.NameEncoding})
	if err != nil {
		r.Err = err
		return r
	}

	m, err := Convert(obj, cfg.Mode, cfg.Attribute, log.With(zap.String("input", input)))
	if err != nil {
		r.Err = fmt.Errorf("converting %s: %w", input, err)
		return r
	}

	if err := WriteMesh(r.Output, m); err != nil {
		r.Err = err
		return r
	}

	r.Vertices = len(m.Vertices)
	r.Indices = len(m.Indices)
	r.Duration = time.Since(start)
	return r
}

// WriteMesh writes m to path in OMSH layout, creating parent directories.
func WriteMesh(path string, m *mesh.Mesh) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
