package chain

import (
	"context"
	"errors"

	"crowdfund-sync/models"
)

// StaticWallet is a WalletProvider for an already-authorized session: a
// fixed account on a fixed chain, typically read from configuration. Network
// and account selection prompts live outside this layer.
type StaticWallet struct {
	Account models.Account
	Chain   uint64

	// Declined simulates the user rejecting the authorization prompt.
	Declined bool
}

func (w *StaticWallet) RequestAccounts(ctx context.Context) ([]models.Account, error) {
	if w.Declined {
		return nil, errors.New("user declined authorization")
	}
	if w.Account == "" {
		return nil, nil
	}
	return []models.Account{w.Account}, nil
}

func (w *StaticWallet) ChainID(ctx context.Context) (uint64, error) {
	return w.Chain, nil
}
