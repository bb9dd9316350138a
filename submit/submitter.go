package submit

import (
	"context"
	"math/big"
	"strconv"
	"strings"

	"crowdfund-sync/chain"
	"crowdfund-sync/logger"
	"crowdfund-sync/models"
	"crowdfund-sync/registry"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvalidInputError means the goal, duration or amount failed local
// validation. The ledger is never touched for such a call.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// DefaultContribution is the fixed per-contribution amount in ether.
const DefaultContribution = "0.1"

const weiDecimals = 18

var contributionWei = decimal.RequireFromString(DefaultContribution).Shift(weiDecimals).BigInt()

// Submitter builds and submits the two write transactions the ledger
// accepts, then resynchronizes the registry so the caller observes its own
// write. Failed writes are never retried here.
type Submitter struct {
	ledger   chain.LedgerWriter
	registry *registry.Registry
	account  models.Account
}

func New(ledger chain.LedgerWriter, reg *registry.Registry, account models.Account) *Submitter {
	return &Submitter{ledger: ledger, registry: reg, account: account}
}

// CreateCampaign converts goalEther exactly to wei, validates the duration
// and submits a campaign-creation transaction. The operation is complete
// only once the registry has been refreshed.
func (s *Submitter) CreateCampaign(ctx context.Context, goalEther, duration string) error {
	goal, err := EtherToWei(goalEther)
	if err != nil {
		return err
	}
	seconds, err := parseDurationSeconds(duration)
	if err != nil {
		return err
	}

	if err := s.ledger.CreateCampaign(ctx, s.account, goal, seconds); err != nil {
		s.resyncAfterBroadcast(ctx)
		return &chain.TransactionError{Op: "createCampaign", Err: err}
	}
	logger.Logger.Info("campaign created",
		zap.String("goal_wei", goal.String()), zap.Uint64("duration_seconds", seconds))
	return s.registry.Refresh(ctx)
}

// Contribute submits a value-bearing transaction of DefaultContribution
// ether to the given campaign. Unknown ids are rejected before anything
// reaches the ledger.
func (s *Submitter) Contribute(ctx context.Context, id uint64) error {
	if _, err := s.registry.Get(id); err != nil {
		return err
	}
	value := new(big.Int).Set(contributionWei)

	if err := s.ledger.Contribute(ctx, s.account, id, value); err != nil {
		s.resyncAfterBroadcast(ctx)
		return &chain.TransactionError{Op: "contribute", Err: err}
	}
	logger.Logger.Info("contribution submitted",
		zap.Uint64("campaign_id", id), zap.String("value_wei", value.String()))
	return s.registry.Refresh(ctx)
}

// resyncAfterBroadcast runs a best-effort refresh when a write failed after
// it may already have been broadcast: a cancelled or dropped call cannot
// retract its on-ledger effect.
func (s *Submitter) resyncAfterBroadcast(ctx context.Context) {
	if ctx.Err() == nil {
		return
	}
	if err := s.registry.Refresh(context.WithoutCancel(ctx)); err != nil {
		logger.Logger.Warn("post-write resync failed", zap.Error(err))
	}
}

// EtherToWei converts a decimal ether amount to wei exactly. Monetary values
// never pass through floating point; fractions finer than 1 wei, negative
// and malformed amounts are rejected.
func EtherToWei(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, &InvalidInputError{Field: "amount", Reason: "not a decimal number"}
	}
	if d.IsNegative() {
		return nil, &InvalidInputError{Field: "amount", Reason: "must not be negative"}
	}
	wei := d.Shift(weiDecimals)
	if !wei.IsInteger() {
		return nil, &InvalidInputError{Field: "amount", Reason: "finer than 1 wei"}
	}
	return wei.BigInt(), nil
}

// WeiToEther renders a wei amount as a decimal ether string for display.
func WeiToEther(wei *big.Int) string {
	return decimal.NewFromBigInt(wei, -weiDecimals).String()
}

func parseDurationSeconds(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &InvalidInputError{Field: "duration", Reason: "must be a non-negative integer of seconds"}
	}
	return n, nil
}
