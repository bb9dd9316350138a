package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crowdfund-sync/chain"
	"crowdfund-sync/logger"
	"crowdfund-sync/models"

	"go.uber.org/zap"
)

// NotFoundError means the id is outside the last-known campaign count.
type NotFoundError struct {
	ID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("campaign %d not found", e.ID)
}

// DiscoveryError means a ledger read failed mid-discovery. ID is the
// campaign whose read failed, or 0 when reading the count itself failed.
type DiscoveryError struct {
	ID  uint64
	Err error
}

func (e *DiscoveryError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("discovery failed reading campaign count: %v", e.Err)
	}
	return fmt.Sprintf("discovery failed reading campaign %d: %v", e.ID, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Registry owns the session's cached campaign snapshot. The snapshot is only
// ever replaced whole by Refresh; readers observe the old or the new
// collection in full, never a mix.
type Registry struct {
	ledger  chain.LedgerReader
	workers int

	mu        sync.RWMutex
	campaigns []models.Campaign
	stale     bool
	lastSync  time.Time
}

// New creates a registry reading from the given ledger. workers bounds the
// discovery fan-out; values below 1 fall back to sequential reads.
func New(ledger chain.LedgerReader, workers int) *Registry {
	if workers < 1 {
		workers = 1
	}
	return &Registry{ledger: ledger, workers: workers}
}

// Refresh re-discovers every campaign and atomically replaces the cached
// snapshot. On failure the previous snapshot is retained and the registry is
// marked stale, so the caller keeps showing the last good list.
func (r *Registry) Refresh(ctx context.Context) error {
	campaigns, err := r.discoverAll(ctx)
	if err != nil {
		r.mu.Lock()
		r.stale = true
		r.mu.Unlock()
		logger.Logger.Warn("campaign discovery failed, keeping previous snapshot", zap.Error(err))
		return err
	}

	r.mu.Lock()
	r.campaigns = campaigns
	r.stale = false
	r.lastSync = time.Now()
	r.mu.Unlock()

	logger.Logger.Info("campaign snapshot replaced", zap.Int("campaigns", len(campaigns)))
	return nil
}

// discoverAll reads the campaign count and fetches ids [1..count] through a
// bounded worker fan-out, reassembling results in ascending id order. Any
// failed read fails the whole discovery; partial results would misrepresent
// total funding activity.
func (r *Registry) discoverAll(ctx context.Context) ([]models.Campaign, error) {
	count, err := r.ledger.CampaignCount(ctx)
	if err != nil {
		return nil, &DiscoveryError{Err: err}
	}

	out := make([]models.Campaign, count)
	if count == 0 {
		return out, nil
	}

	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, r.workers)
		mu       sync.Mutex
		firstErr *DiscoveryError
	)
	for id := uint64(1); id <= count; id++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(id uint64) {
			defer wg.Done()
			defer func() { <-sem }()

			raw, err := r.ledger.Campaign(ctx, id)
			if err == nil {
				var c models.Campaign
				if c, err = Normalize(id, raw); err == nil {
					out[id-1] = c
					return
				}
			}
			mu.Lock()
			if firstErr == nil || id < firstErr.ID {
				firstErr = &DiscoveryError{ID: id, Err: err}
			}
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Campaigns returns a copy of the current snapshot in ascending id order.
func (r *Registry) Campaigns() []models.Campaign {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Campaign, len(r.campaigns))
	copy(out, r.campaigns)
	return out
}

// Get returns the cached snapshot of one campaign.
func (r *Registry) Get(id uint64) (models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 1 || id > uint64(len(r.campaigns)) {
		return models.Campaign{}, &NotFoundError{ID: id}
	}
	return r.campaigns[id-1], nil
}

// Stale reports whether the last refresh failed and the snapshot is older
// than the ledger's current state may be.
func (r *Registry) Stale() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stale
}

// LastSync returns when the snapshot was last replaced, or the zero time if
// no refresh has succeeded yet.
func (r *Registry) LastSync() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSync
}
