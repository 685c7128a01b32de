// Package tracker drives the periodic sweep over the tracked URL set:
// batching, per-URL retries, change detection, persistence and
// notification. One URL's failure never aborts a batch or the process.
package tracker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"PriceTracker/internal/database"
	"PriceTracker/internal/detector"
	"PriceTracker/internal/models"
	"PriceTracker/internal/notifier"
	"PriceTracker/internal/scraper"
	"PriceTracker/pkg/config"
	"PriceTracker/utils"
)

// Tracker owns the sweep loop. The snapshot store is its only shared
// mutable state; fetch sessions are scoped per URL inside the fetchers.
type Tracker struct {
	store    *database.SnapshotStore
	router   *scraper.Router
	notify   notifier.Notifier
	alerter  notifier.OperatorAlerter
	gate     *sourceGate
	cfg      config.TrackerConfig
	baseURLs []string
	workers  int
}

// New wires a tracker. baseURLs is the configured URL set; every sweep
// unions it with the store's valid URLs. workers caps in-batch
// concurrency; sourceDelays spaces fetches per source label. Batch size
// and retry limit are clamped to at least one.
func New(
	store *database.SnapshotStore,
	router *scraper.Router,
	notify notifier.Notifier,
	alerter notifier.OperatorAlerter,
	cfg config.TrackerConfig,
	baseURLs []string,
	workers int,
	sourceDelays map[string]time.Duration,
) *Tracker {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if workers < 1 {
		workers = 1
	}
	if workers > cfg.BatchSize {
		workers = cfg.BatchSize
	}
	return &Tracker{
		store:    store,
		router:   router,
		notify:   notify,
		alerter:  alerter,
		gate:     newSourceGate(sourceDelays),
		cfg:      cfg,
		baseURLs: baseURLs,
		workers:  workers,
	}
}

// Run loops sweeps until ctx is cancelled. After each sweep it sleeps
// whatever remains of the check interval (clamped at zero) and emits a
// heartbeat when the heartbeat interval has elapsed.
func (t *Tracker) Run(ctx context.Context) error {
	lastHeartbeat := time.Now()

	for {
		start := time.Now()
		t.Sweep(ctx)
		if err := ctx.Err(); err != nil {
			log.Println("Tracker shutting down.")
			return err
		}

		idle := t.cfg.CheckInterval() - time.Since(start)
		if idle < 0 {
			idle = 0
		}
		log.Printf("Sweep done in %s. Sleeping %s before next check.", time.Since(start).Round(time.Millisecond), idle.Round(time.Millisecond))

		select {
		case <-ctx.Done():
			log.Println("Tracker shutting down.")
			return ctx.Err()
		case <-time.After(idle):
		}

		if time.Since(lastHeartbeat) >= t.cfg.HeartbeatInterval() {
			if err := t.alerter.Heartbeat(); err != nil {
				log.Printf("Heartbeat delivery failed: %v", err)
			}
			lastHeartbeat = time.Now()
		}
	}
}

// Sweep runs one full pass over the tracked URL set in fixed-size
// batches. Cancellation is honored between URLs: work in flight for the
// current URL always completes.
func (t *Tracker) Sweep(ctx context.Context) {
	urls, err := t.gatherURLs()
	if err != nil {
		log.Printf("Failed to gather URL set: %v", err)
		return
	}
	if len(urls) == 0 {
		log.Println("No URLs to track.")
		return
	}

	batchSize := t.cfg.BatchSize
	totalBatches := (len(urls) + batchSize - 1) / batchSize
	for start := 0; start < len(urls); start += batchSize {
		if ctx.Err() != nil {
			return
		}
		end := start + batchSize
		if end > len(urls) {
			end = len(urls)
		}
		log.Printf("Processing batch %d/%d (%d URLs)", start/batchSize+1, totalBatches, end-start)
		t.processBatch(ctx, urls[start:end])
	}
}

// gatherURLs unions the configured URL set with the store's valid URLs,
// canonicalized and deduplicated.
func (t *Tracker) gatherURLs() ([]string, error) {
	stored, err := t.store.ListValid()
	if err != nil {
		return nil, err
	}
	combined := make([]string, 0, len(t.baseURLs)+len(stored))
	for _, u := range t.baseURLs {
		combined = append(combined, utils.CanonicalizeURL(u))
	}
	combined = append(combined, stored...)
	return utils.UniqueStrings(combined), nil
}

// processBatch fans the batch out over the worker pool. No ordering is
// guaranteed inside a batch.
func (t *Tracker) processBatch(ctx context.Context, batch []string) {
	jobs := make(chan string, len(batch))
	var wg sync.WaitGroup

	for w := 0; w < t.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				if ctx.Err() != nil {
					continue
				}
				t.ProcessURL(ctx, url)
			}
		}()
	}

	for _, url := range batch {
		jobs <- url
	}
	close(jobs)
	wg.Wait()
}

// ProcessURL runs the retry policy for one URL: fetch, evaluate, persist
// and notify. After the last failed attempt the URL is invalidated and
// the operator alerted; the sweep moves on either way.
func (t *Tracker) ProcessURL(ctx context.Context, url string) {
	fetcher, err := t.router.Resolve(url)
	if err != nil {
		log.Printf("Skipping %s: %v", url, err)
		t.invalidate(url)
		return
	}

	var snapshot models.ProductSnapshot
	var fetchErr error
	for attempt := 1; attempt <= t.cfg.MaxRetries; attempt++ {
		if err := t.gate.Wait(ctx, fetcher.Source()); err != nil {
			return
		}

		snapshot, fetchErr = fetcher.Fetch(ctx, url)
		if fetchErr == nil {
			t.evaluate(ctx, snapshot)
			return
		}
		if errors.Is(fetchErr, scraper.ErrNotEligible) {
			// Deliberate skip, not a transient failure: exclude the
			// URL from the working set without alerting anyone.
			log.Printf("Excluding %s: %v", url, fetchErr)
			t.invalidate(url)
			return
		}

		log.Printf("Attempt %d/%d failed for %s: %v", attempt, t.cfg.MaxRetries, url, fetchErr)
		if attempt < t.cfg.MaxRetries {
			// Linear backoff: the delay grows with the attempt number.
			backoff := time.Duration(attempt) * t.cfg.RetryBackoff()
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}

	log.Printf("All %d attempts failed for %s. Marking invalid.", t.cfg.MaxRetries, url)
	t.invalidate(url)
	t.alerter.AlertError(url, fetchErr)
}

// evaluate feeds a fresh snapshot through the change detector and acts
// on the verdict. Storage errors abort this URL only; notification
// errors are logged and never block persistence.
func (t *Tracker) evaluate(ctx context.Context, snapshot models.ProductSnapshot) {
	previous, found, err := t.store.Get(snapshot.URL)
	if err != nil {
		log.Printf("Storage unavailable for %s: %v", snapshot.URL, err)
		return
	}

	var previousRef *models.PersistedRecord
	if found {
		previousRef = &previous
	}

	verdict := detector.Evaluate(snapshot, previousRef)
	log.Printf("Verdict for %s: notify=%v reason=%s", snapshot.URL, verdict.Notify, verdict.Reason)

	if !verdict.Notify {
		// A successful fetch restores a previously invalidated URL even
		// when nothing changed.
		if found && previous.IsInvalid {
			if err := t.store.ClearInvalid(snapshot.URL); err != nil {
				log.Printf("Failed to restore %s: %v", snapshot.URL, err)
			}
		}
		return
	}

	if err := t.store.Upsert(snapshot.URL, snapshot.Title, snapshot.Price, snapshot.Availability, snapshot.ImageURL); err != nil {
		log.Printf("Storage unavailable for %s: %v", snapshot.URL, err)
		return
	}

	err = t.notify.Notify(ctx, notifier.Notification{
		Title:    snapshot.Title,
		ImageURL: snapshot.ImageURL,
		Price:    snapshot.Price,
		URL:      snapshot.URL,
		Source:   snapshot.Source,
		Reason:   verdict.Reason,
	})
	if err != nil {
		log.Printf("Failed to send notification for %s: %v", snapshot.Title, err)
	} else {
		log.Printf("Notification sent for %s (%s)", snapshot.Title, verdict.Reason)
	}
}

func (t *Tracker) invalidate(url string) {
	if err := t.store.MarkInvalid(url); err != nil {
		log.Printf("Failed to mark %s invalid: %v", url, err)
	}
}
