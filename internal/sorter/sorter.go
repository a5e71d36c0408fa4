// Package sorter orders asset pages by host using locale-aware collation.
package sorter

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/user/assetview/internal/model"
)

// DefaultDelay is the simulated cost of a sort.
const DefaultDelay = time.Second

// Sorter produces host-ordered copies of asset pages.
type Sorter struct {
	tag   language.Tag
	delay time.Duration

	// collate.Collator keeps internal buffers and is not safe for concurrent use.
	mu       sync.Mutex
	collator *collate.Collator
}

// New creates a sorter for the given locale. delay is how long SortAsync
// waits before delivering a result; zero delivers as soon as the sort is done.
func New(tag language.Tag, delay time.Duration) *Sorter {
	if delay < 0 {
		delay = 0
	}
	return &Sorter{
		tag:      tag,
		delay:    delay,
		collator: collate.New(tag),
	}
}

// Delay returns the configured simulated latency.
func (s *Sorter) Delay() time.Duration {
	return s.delay
}

// Sort returns a new slice ordered ascending by Host. Ties keep their input
// order; the input is not modified.
func (s *Sorter) Sort(records []model.Asset) []model.Asset {
	sorted := make([]model.Asset, len(records))
	copy(sorted, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(sorted, func(i, j int) bool {
		return s.collator.CompareString(sorted[i].Host, sorted[j].Host) < 0
	})
	return sorted
}

// SortAsync sorts records in the background. The returned channel receives the
// sorted page once the delay has elapsed, or is closed without a value if ctx
// is done first.
func (s *Sorter) SortAsync(ctx context.Context, records []model.Asset) <-chan []model.Asset {
	out := make(chan []model.Asset, 1)

	go func() {
		defer close(out)
		sorted := s.Sort(records)

		if s.delay > 0 {
			timer := time.NewTimer(s.delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return
			}
		} else if ctx.Err() != nil {
			return
		}

		out <- sorted
	}()

	return out
}
