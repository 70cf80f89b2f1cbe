package store

import "github.com/hance08/tally/internal/model"

// Condition guards a balance update. The update applies only when the
// account's available balance is at least MinAvailable.
type Condition struct {
	MinAvailable model.Amount
}

type Repository interface {
	// Account Operations
	GetAccount(id model.ClientID) (*model.Account, error)
	CreateAccount(id model.ClientID) (*model.Account, error)
	UpdateBalances(id model.ClientID, availableDelta, heldDelta model.Amount, cond *Condition) (bool, error)
	LockAccount(id model.ClientID) error
	ListAccounts() ([]*model.Account, error)

	// Transaction Operations
	RecordTransaction(rec model.TransactionRecord) error
	GetTransaction(id model.TxID) (*model.TransactionRecord, error)

	// Dispute Operations
	InsertDispute(id model.TxID) error
	GetActiveDispute(id model.TxID) (*model.TransactionRecord, error)
	RemoveDispute(id model.TxID) error

	// ExecTx runs fn against a repository whose writes commit together,
	// or not at all when fn returns an error.
	ExecTx(fn func(Repository) error) error
	Reset() error
	Close() error
}
