package taskqueue

import (
	"fmt"
	"sync"
	"time"

	"tidy/internal/logging"
	"tidy/internal/metrics"
)

// Run processes every item in items with at most concurrency workers running
// at once. Each item is handed to fn; an error or panic from fn is caught,
// counted and logged against label(item), and never stops the other items.
// Run returns only once every item has finished, successfully or not. An
// empty batch returns immediately.
//
// Run has no retry policy. A failed item is picked up again when the stage
// is re-run, because stages select only items still missing their derived
// data.
func Run[T any](stage string, items []T, concurrency int, label func(T) string, fn func(T) error) {
	if len(items) == 0 {
		logging.Info("%s: no items to process", stage)
		return
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	start := time.Now()
	metrics.StageWorkers.WithLabelValues(stage).Set(float64(concurrency))

	jobs := make(chan T)
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				process(stage, item, label, fn)
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()

	metrics.StageLastRunDuration.WithLabelValues(stage).Set(time.Since(start).Seconds())
	logging.Debug("%s: drained %d items in %v", stage, len(items), time.Since(start))
}

// process runs fn for one item, isolating errors and panics.
func process[T any](stage string, item T, label func(T) string, fn func(T) error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StageItemFailures.WithLabelValues(stage).Inc()
			logging.Error("%s: %s: panic: %v", stage, label(item), r)
		}
	}()

	if err := fn(item); err != nil {
		metrics.StageItemFailures.WithLabelValues(stage).Inc()
		logging.Error("%s: %s: %v", stage, label(item), err)
		return
	}
	metrics.StageItemsProcessed.WithLabelValues(stage).Inc()
}

// ID is a convenience label function for stages whose items are identified
// by a numeric database ID.
func ID(id int64) string {
	return fmt.Sprintf("item %d", id)
}
