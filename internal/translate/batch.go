package translate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// completer sends one prompt to a language model and returns the raw reply.
type completer interface {
	name() string
	complete(ctx context.Context, prompt string) (string, error)
}

// BatchTranslator splits items into batches of Options.BatchSize. Each batch
// becomes one request; up to Options.Concurrency workers pull batches from a
// shared queue and the first failure cancels the rest.
type BatchTranslator struct {
	backend completer
	options Options
}

func (t *BatchTranslator) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}

	batches := splitBatches(items, t.options.batchSize())
	if len(batches) == 1 {
		return t.translateBatch(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	results := make([][]TranslationResult, len(batches))
	work := make(chan int)

	workers := min(t.options.concurrency(), len(batches))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				res, err := t.translateBatch(ctx, batches[idx])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("batch %d failed: %w", idx, err)
					}
					mu.Unlock()
					cancel()
					continue
				}
				results[idx] = res
			}
		}()
	}

feed:
	for i := range batches {
		select {
		case <-ctx.Done():
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []TranslationResult
	for _, r := range results {
		all = append(all, r...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}

func (t *BatchTranslator) translateBatch(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	reply, err := t.backend.complete(ctx, BuildPrompt(t.options, items))
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if reply == "" {
		return nil, fmt.Errorf("no text in %s response", t.backend.name())
	}
	return parseReply(reply, len(items))
}

func splitBatches(items []TranslationItem, size int) [][]TranslationItem {
	var batches [][]TranslationItem
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}
