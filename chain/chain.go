package chain

import (
	"context"
	"errors"
	"sync"

	"crowdfund-sync/logger"
	"crowdfund-sync/models"

	"go.uber.org/zap"
)

// WalletProvider is the external wallet collaborator. It authorizes an
// account for the session and reports which chain it is connected to.
type WalletProvider interface {
	RequestAccounts(ctx context.Context) ([]models.Account, error)
	ChainID(ctx context.Context) (uint64, error)
}

// Deployment locates one ledger contract deployment.
type Deployment struct {
	Address string
	Handle  LedgerHandle
}

// Client resolves the session account and the ledger handle for the active
// chain. Authorization is requested from the wallet exactly once; later
// Connect calls return the cached account.
type Client struct {
	wallet      WalletProvider
	deployments map[uint64]Deployment

	mu        sync.Mutex
	account   models.Account
	connected bool
}

func NewClient(wallet WalletProvider, deployments map[uint64]Deployment) *Client {
	return &Client{wallet: wallet, deployments: deployments}
}

// Connect asks the wallet for the authorized accounts and pins the first one
// as the session account.
func (c *Client) Connect(ctx context.Context) (models.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return c.account, nil
	}
	if c.wallet == nil {
		return "", &ConnectionError{Err: errors.New("no wallet provider available")}
	}

	accounts, err := c.wallet.RequestAccounts(ctx)
	if err != nil {
		return "", &ConnectionError{Err: err}
	}
	if len(accounts) == 0 {
		return "", &ConnectionError{Err: errors.New("authorization returned no accounts")}
	}

	c.account = accounts[0]
	c.connected = true
	logger.Logger.Info("wallet connected", zap.String("account", string(c.account)))
	return c.account, nil
}

// Account returns the session account, or the empty string before Connect
// has succeeded.
func (c *Client) Account() models.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// ResolveLedger looks up the ledger deployment for the wallet's active chain.
func (c *Client) ResolveLedger(ctx context.Context) (LedgerHandle, error) {
	if c.wallet == nil {
		return nil, &ConnectionError{Err: errors.New("no wallet provider available")}
	}
	chainID, err := c.wallet.ChainID(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	dep, ok := c.deployments[chainID]
	if !ok || dep.Handle == nil {
		return nil, &UnsupportedNetworkError{ChainID: chainID}
	}
	logger.Logger.Info("ledger resolved",
		zap.Uint64("chain_id", chainID), zap.String("address", dep.Address))
	return dep.Handle, nil
}
