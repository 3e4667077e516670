// ABOUTME: Poller that fetches subscribed feeds and hands the snapshots to the reconciler
// ABOUTME: Runs feeds concurrently with a bounded worker group and records failures as feed status

package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/harper/feednotes/internal/fetch"
	"github.com/harper/feednotes/internal/parse"
	"github.com/harper/feednotes/internal/tags"
	"github.com/harper/feednotes/internal/vault"
)

// Fetcher downloads a feed document. *fetch.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, v fetch.Validators) (*fetch.Result, error)
}

// TagMap persists pending tag mappings. *tags.Mapper implements it.
type TagMap interface {
	UpdateTagMap() (tags.Result, error)
}

// PollResult is the outcome of polling one feed.
type PollResult struct {
	Feed        string
	New         int
	NotModified bool
	Skipped     bool // suspended
	Err         error
}

// Poller polls feeds of a library.
type Poller struct {
	lib         *vault.Library
	rec         *Reconciler
	fetcher     Fetcher
	tagMap      TagMap
	logger      *slog.Logger
	concurrency int
}

// NewPoller creates a Poller. tagMap may be nil.
func NewPoller(lib *vault.Library, rec *Reconciler, fetcher Fetcher, tagMap TagMap, logger *slog.Logger, concurrency int) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Poller{
		lib:         lib,
		rec:         rec,
		fetcher:     fetcher,
		tagMap:      tagMap,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Poll fetches one feed and reconciles it. Suspended feeds are skipped.
// Failures are stored as an error status on the feed and returned in the
// result; existing items are left alone.
func (p *Poller) Poll(ctx context.Context, feed *vault.FeedNote) PollResult {
	res := PollResult{Feed: feed.Name}
	if !feed.Record.FeedStatus().Polled() {
		res.Skipped = true
		return res
	}

	res.New, res.NotModified, res.Err = p.poll(ctx, feed)
	if res.Err != nil {
		p.logger.Warn("feed poll failed", "feed", feed.Name, "error", res.Err)
		feed.Record.SetStatus(vault.ErrorStatus(res.Err.Error()))
		feed.Record.ETag = ""
		feed.Record.LastModified = ""
		if err := p.lib.SaveFeed(feed); err != nil {
			p.logger.Warn("failed to save feed status", "feed", feed.Name, "error", err)
		}
	}
	return res
}

func (p *Poller) poll(ctx context.Context, feed *vault.FeedNote) (int, bool, error) {
	validators := fetch.Validators{ETag: feed.Record.ETag, LastModified: feed.Record.LastModified}
	result, err := p.fetcher.Fetch(ctx, feed.Record.FeedURL, validators)
	if err != nil {
		return 0, false, fmt.Errorf("fetch: %w", err)
	}

	if result.NotModified {
		feed.Record.SetStatus(vault.OK)
		feed.Record.Updated = p.rec.now().UnixMilli()
		if err := p.lib.SaveFeed(feed); err != nil {
			return 0, true, fmt.Errorf("save feed: %w", err)
		}
		p.logger.Info("feed not modified", "feed", feed.Name)
		return 0, true, nil
	}

	remote, err := parse.Parse(result.Body, feed.Record.FeedURL)
	if err != nil {
		return 0, false, fmt.Errorf("parse: %w", err)
	}

	feed.Record.ETag = result.ETag
	feed.Record.LastModified = result.LastModified
	n, err := p.rec.Update(feed, remote)
	return n, false, err
}

// PollAll polls feeds concurrently, then writes pending tag mappings. The
// results are in the order of feeds. Individual feed failures never make
// PollAll fail; only the tag map update error is returned.
func (p *Poller) PollAll(ctx context.Context, feeds []*vault.FeedNote) ([]PollResult, error) {
	results := make([]PollResult, len(feeds))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, feed := range feeds {
		g.Go(func() error {
			results[i] = p.Poll(ctx, feed)
			return nil
		})
	}
	_ = g.Wait()

	if p.tagMap == nil {
		return results, nil
	}
	tagRes, err := p.tagMap.UpdateTagMap()
	if err != nil {
		return results, fmt.Errorf("update tag map: %w", err)
	}
	p.logger.Debug("tag map synced", "added", tagRes.Added, "pruned", tagRes.Pruned)
	return results, nil
}
