package chain

import "fmt"

// ConnectionError means no wallet provider was available or the user declined
// authorization. It is fatal for the session and never retried.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("wallet connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UnsupportedNetworkError means no ledger deployment is known for the chain
// the wallet is connected to. Fatal for all data operations.
type UnsupportedNetworkError struct {
	ChainID uint64
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("no ledger deployment known for chain %d", e.ChainID)
}

// TransactionError means a submitted write was rejected, reverted or dropped.
// The caller must re-invoke explicitly; resubmitting a value-bearing
// transaction automatically risks spending funds twice.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
