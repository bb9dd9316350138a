package chain

import (
	"context"
	"math/big"

	"crowdfund-sync/models"
)

// RawCampaign is one campaign record exactly as the ledger wire format
// carries it. Numeric fields are strings (base-10 or 0x-prefixed hex,
// depending on the node) and are normalized by the registry.
type RawCampaign struct {
	Goal         string `json:"goal"`
	AmountRaised string `json:"amountRaised"`
	Deadline     string `json:"deadline"`
}

// LedgerReader covers the side-effect-free calls of the ledger contract.
// Reads may be retried freely.
type LedgerReader interface {
	CampaignCount(ctx context.Context) (uint64, error)
	Campaign(ctx context.Context, id uint64) (RawCampaign, error)
}

// LedgerWriter covers the transaction-submitting calls. Each call results in
// at most one ledger write and must never be retried automatically.
type LedgerWriter interface {
	CreateCampaign(ctx context.Context, from models.Account, goal *big.Int, durationSeconds uint64) error
	Contribute(ctx context.Context, from models.Account, id uint64, value *big.Int) error
}

// LedgerHandle is the full read/write interface of a deployed ledger
// contract.
type LedgerHandle interface {
	LedgerReader
	LedgerWriter
}
