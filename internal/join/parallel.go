package join

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/inodb/postoga/internal/table"
)

// Result is the canonical table built for one assembly.
type Result struct {
	Assembly Assembly
	Table    *table.Table
	Stats    JoinStats
}

// WorkItem is an assembly queued for building.
type WorkItem struct {
	Seq      int
	Assembly Assembly
}

// WorkResult holds the outcome of building a single assembly.
type WorkResult struct {
	Seq    int
	Result *Result
	Err    error
}

// ParallelBuild loads and joins work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (j *Joiner) ParallelBuild(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := j.LoadAndBuild(item.Assembly)
				results <- WorkResult{Seq: item.Seq, Result: res, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// BuildAll builds every assembly on a worker pool and returns the results in
// input order. The first failing assembly (in input order) aborts the run.
func (j *Joiner) BuildAll(ctx context.Context, assemblies []Assembly, workers int) ([]*Result, error) {
	if workers <= 0 || workers > len(assemblies) {
		workers = max(len(assemblies), 1)
	}

	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, a := range assemblies {
			select {
			case items <- WorkItem{Seq: i, Assembly: a}:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make([]*Result, 0, len(assemblies))
	err := OrderedCollect(j.ParallelBuild(items, workers), func(r WorkResult) error {
		if r.Err != nil {
			return fmt.Errorf("build %s: %w", assemblies[r.Seq].Name, r.Err)
		}
		out = append(out, r.Result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
