// ABOUTME: TrackedFeed model representing one normalized RSS/Atom snapshot
// ABOUTME: Derives the average post interval used for the feed dashboard

package models

import (
	"math"
	"sort"
	"time"
)

// TrackedFeed is a freshly normalized snapshot of a remote feed.
// It is built once per poll and never mutated afterwards.
type TrackedFeed struct {
	Title       string
	Description string
	SiteURL     string
	Image       *Image
	Items       []TrackedItem // feed document order, not necessarily newest first
	Source      string        // URL or file path the XML was read from
}

// AvgPostInterval returns the average time between posts in whole hours.
// Feeds with one or no dated items report 1.
func (f *TrackedFeed) AvgPostInterval() int {
	times := make([]time.Time, 0, len(f.Items))
	for _, item := range f.Items {
		if !item.Published.IsZero() {
			times = append(times, item.Published)
		}
	}
	if len(times) <= 1 {
		return 1
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	span := times[len(times)-1].Sub(times[0])
	intervals := float64(len(times) - 1)
	return int(math.Round(span.Hours() / intervals))
}

// ItemByID returns the item with the given id, if present.
func (f *TrackedFeed) ItemByID(id string) (TrackedItem, bool) {
	for _, item := range f.Items {
		if item.ID == id {
			return item, true
		}
	}
	return TrackedItem{}, false
}
