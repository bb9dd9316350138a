package models

import "math/big"

// Account is the chain address of the connected user. It is resolved once per
// session during wallet authorization and does not change afterwards.
type Account string

// Campaign is a normalized snapshot of one funding round as the ledger
// reported it at discovery time. Amounts are in the smallest currency unit
// (wei) and may exceed the goal; the ledger is the authority on both values.
type Campaign struct {
	ID           uint64   `json:"id"`            // 1-based, contiguous, assigned by the ledger
	Goal         *big.Int `json:"goal"`          // wei
	AmountRaised *big.Int `json:"amount_raised"` // wei
	Deadline     uint64   `json:"deadline"`      // unix timestamp in seconds
}
