package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/polmat77/classreviewmaster/internal/acquire"
)

// ParallelConfig controls multi-document processing.
type ParallelConfig struct {
	// Workers is the number of documents processed concurrently.
	Workers int
}

// DefaultParallelConfig sizes the pool to the machine.
func DefaultParallelConfig() ParallelConfig {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return ParallelConfig{Workers: workers}
}

// AnalyzeAll processes documents concurrently and returns one Result
// per source, in input order. Per-document progress is suppressed; the
// callback reports completed documents instead. Cancelling the context
// stops scheduling new documents; sources already running finish with
// a degraded result.
func (p *Pipeline) AnalyzeAll(ctx context.Context, sources []acquire.Source, cfg ParallelConfig, progress ProgressCallback) []*Result {
	if progress == nil {
		progress = NoOpProgressCallback{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultParallelConfig().Workers
	}
	if workers > len(sources) {
		workers = len(sources)
	}

	results := make([]*Result, len(sources))
	if len(sources) == 0 {
		return results
	}

	// Each worker runs a quiet pipeline clone so that concurrent
	// documents do not interleave stage progress on one callback.
	quiet := *p
	quiet.cfg.Progress = NoOpProgressCallback{}

	progress.OnStart(len(sources))

	type job struct {
		index  int
		source acquire.Source
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	var completed int
	var mu sync.Mutex

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := quiet.Analyze(ctx, j.source)
				results[j.index] = res

				mu.Lock()
				completed++
				done := completed
				mu.Unlock()

				if res.Degraded {
					progress.OnError(done, res.Failure)
				}
				progress.OnProgress(done, len(sources))
			}
		}()
	}

	for i, src := range sources {
		select {
		case <-ctx.Done():
			// Leave remaining slots as degraded cancellations.
		case jobs <- job{index: i, source: src}:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	for i, src := range sources {
		if results[i] == nil {
			results[i] = &Result{
				Source:   src.Name(),
				Degraded: true,
				Failure: newExtractError(KindAcquisitionTimeout,
					"batch cancelled before this document was processed", ctx.Err()),
			}
		}
	}

	progress.OnComplete()
	return results
}
