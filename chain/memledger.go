package chain

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"crowdfund-sync/models"
)

type memCampaign struct {
	goal         *big.Int
	amountRaised *big.Int
	deadline     uint64
}

// MemoryLedger is an in-process LedgerHandle simulating a deployed
// crowdfunding contract: ids are contiguous and 1-based, contributions
// accumulate into amountRaised. It backs local development deployments and
// the test suites.
type MemoryLedger struct {
	mu        sync.Mutex
	campaigns []memCampaign
	writes    int
	now       func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{now: time.Now}
}

// SetClock overrides the deadline clock. Intended for tests.
func (l *MemoryLedger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *MemoryLedger) CampaignCount(ctx context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return uint64(len(l.campaigns)), nil
}

func (l *MemoryLedger) Campaign(ctx context.Context, id uint64) (RawCampaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 1 || id > uint64(len(l.campaigns)) {
		return RawCampaign{}, fmt.Errorf("campaign %d does not exist", id)
	}
	c := l.campaigns[id-1]
	return RawCampaign{
		Goal:         c.goal.String(),
		AmountRaised: c.amountRaised.String(),
		Deadline:     strconv.FormatUint(c.deadline, 10),
	}, nil
}

func (l *MemoryLedger) CreateCampaign(ctx context.Context, from models.Account, goal *big.Int, durationSeconds uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes++
	l.campaigns = append(l.campaigns, memCampaign{
		goal:         new(big.Int).Set(goal),
		amountRaised: new(big.Int),
		deadline:     uint64(l.now().Unix()) + durationSeconds,
	})
	return nil
}

func (l *MemoryLedger) Contribute(ctx context.Context, from models.Account, id uint64, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes++
	if id < 1 || id > uint64(len(l.campaigns)) {
		return fmt.Errorf("reverted: campaign %d does not exist", id)
	}
	c := &l.campaigns[id-1]
	c.amountRaised.Add(c.amountRaised, value)
	return nil
}

// Writes reports how many write transactions the ledger has received,
// including reverted ones.
func (l *MemoryLedger) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}
