package service

import (
	"errors"
	"fmt"

	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
	"go.uber.org/zap"
)

// Reasons an event is accepted but leaves state untouched.
const (
	reasonApplied           = ""
	reasonLocked            = "account locked"
	reasonInsufficientFunds = "insufficient funds"
	reasonUnknownClient     = "unknown client"
	reasonUnknownTx         = "unknown transaction"
	reasonNoDispute         = "no active dispute"
	reasonAlreadyDisputed   = "transaction already disputed"
)

// LedgerService applies events to the store one at a time. It is a single
// writer: callers must not invoke Process concurrently.
type LedgerService struct {
	repo   store.Repository
	config *config.Config
	logger *zap.Logger
	stats  Stats
}

func NewLedgerService(repo store.Repository, cfg *config.Config, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		repo:   repo,
		config: cfg,
		logger: logger,
		stats:  make(Stats),
	}
}

// Process applies ev atomically. Events that cannot apply (locked account,
// insufficient funds, unknown references) are ignored without error; only
// invalid events and store failures are returned.
func (ls *LedgerService) Process(ev model.Event) error {
	var reason string

	err := ls.repo.ExecTx(func(repo store.Repository) error {
		var err error
		reason, err = ls.apply(repo, ev)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to process %s (client %d, tx %d): %w",
			ev.Type(), ev.ClientID(), ev.TxID(), err)
	}

	ls.stats.record(ev.Type(), reason)

	if reason != reasonApplied {
		ls.logger.Debug("event ignored",
			zap.String("event", ev.Type()),
			zap.Uint16("client", uint16(ev.ClientID())),
			zap.Uint32("tx", uint32(ev.TxID())),
			zap.String("reason", reason),
		)
	}

	return nil
}

// Stats returns a copy of the per event type counters.
func (ls *LedgerService) Stats() Stats {
	return ls.stats.clone()
}

func (ls *LedgerService) apply(repo store.Repository, ev model.Event) (string, error) {
	switch e := ev.(type) {
	case model.Deposit:
		return ls.deposit(repo, e)
	case model.Withdrawal:
		return ls.withdraw(repo, e)
	case model.Dispute:
		return ls.dispute(repo, e)
	case model.Resolve:
		return ls.resolve(repo, e)
	case model.Chargeback:
		return ls.chargeback(repo, e)
	default:
		return reasonApplied, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

func (ls *LedgerService) deposit(repo store.Repository, e model.Deposit) (string, error) {
	if e.Amount.IsNegative() {
		return reasonApplied, fmt.Errorf("%w: %s", ErrNegativeAmount, e.Amount)
	}

	acc, err := openAccount(repo, e.Client)
	if err != nil {
		return reasonApplied, err
	}
	if acc.Locked {
		return reasonLocked, nil
	}

	if err := repo.RecordTransaction(model.TransactionRecord{
		ID:     e.Tx,
		Kind:   model.KindDeposit,
		Client: e.Client,
		Amount: e.Amount,
	}); err != nil {
		return reasonApplied, err
	}

	if _, err := repo.UpdateBalances(e.Client, e.Amount, 0, nil); err != nil {
		return reasonApplied, err
	}

	return reasonApplied, nil
}

func (ls *LedgerService) withdraw(repo store.Repository, e model.Withdrawal) (string, error) {
	if e.Amount.IsNegative() {
		return reasonApplied, fmt.Errorf("%w: %s", ErrNegativeAmount, e.Amount)
	}

	acc, err := openAccount(repo, e.Client)
	if err != nil {
		return reasonApplied, err
	}
	if acc.Locked {
		return reasonLocked, nil
	}

	applied, err := repo.UpdateBalances(e.Client, e.Amount.Neg(), 0, &store.Condition{MinAvailable: e.Amount})
	if err != nil {
		return reasonApplied, err
	}

	if applied || ls.config.Ledger.RecordFailedWithdrawals {
		if err := repo.RecordTransaction(model.TransactionRecord{
			ID:     e.Tx,
			Kind:   model.KindWithdrawal,
			Client: e.Client,
			Amount: e.Amount,
		}); err != nil {
			return reasonApplied, err
		}
	}

	if !applied {
		return reasonInsufficientFunds, nil
	}
	return reasonApplied, nil
}

func (ls *LedgerService) dispute(repo store.Repository, e model.Dispute) (string, error) {
	if reason, err := checkClient(repo, e.Client); reason != reasonApplied || err != nil {
		return reason, err
	}

	rec, err := repo.GetTransaction(e.Tx)
	if err != nil {
		if isNotFound(err) {
			return reasonUnknownTx, nil
		}
		return reasonApplied, err
	}

	if reason, err := checkOwner(repo, e.Client, rec); reason != reasonApplied || err != nil {
		return reason, err
	}

	_, err = repo.GetActiveDispute(e.Tx)
	switch {
	case err == nil:
		return reasonAlreadyDisputed, nil
	case !isNotFound(err):
		return reasonApplied, err
	}

	if _, err := repo.UpdateBalances(rec.Client, rec.Amount.Neg(), rec.Amount, nil); err != nil {
		return reasonApplied, err
	}

	if err := repo.InsertDispute(e.Tx); err != nil {
		return reasonApplied, err
	}

	return reasonApplied, nil
}

func (ls *LedgerService) resolve(repo store.Repository, e model.Resolve) (string, error) {
	rec, reason, err := activeDispute(repo, e.Client, e.Tx)
	if reason != reasonApplied || err != nil {
		return reason, err
	}

	if _, err := repo.UpdateBalances(rec.Client, rec.Amount, rec.Amount.Neg(), nil); err != nil {
		return reasonApplied, err
	}

	if err := repo.RemoveDispute(e.Tx); err != nil {
		return reasonApplied, err
	}

	return reasonApplied, nil
}

func (ls *LedgerService) chargeback(repo store.Repository, e model.Chargeback) (string, error) {
	rec, reason, err := activeDispute(repo, e.Client, e.Tx)
	if reason != reasonApplied || err != nil {
		return reason, err
	}

	if _, err := repo.UpdateBalances(rec.Client, 0, rec.Amount.Neg(), nil); err != nil {
		return reasonApplied, err
	}

	if err := repo.LockAccount(rec.Client); err != nil {
		return reasonApplied, err
	}

	if err := repo.RemoveDispute(e.Tx); err != nil {
		return reasonApplied, err
	}

	return reasonApplied, nil
}

// openAccount returns the client's account, creating an empty one on first use.
func openAccount(repo store.Repository, id model.ClientID) (*model.Account, error) {
	acc, err := repo.GetAccount(id)
	if err == nil {
		return acc, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	return repo.CreateAccount(id)
}

// checkClient gates dispute family events on the sending client: it must
// exist and must not be locked.
func checkClient(repo store.Repository, id model.ClientID) (string, error) {
	acc, err := repo.GetAccount(id)
	if err != nil {
		if isNotFound(err) {
			return reasonUnknownClient, nil
		}
		return reasonApplied, err
	}
	if acc.Locked {
		return reasonLocked, nil
	}
	return reasonApplied, nil
}

// checkOwner gates on the account that owns the referenced record, which is
// the one whose balances move.
func checkOwner(repo store.Repository, sender model.ClientID, rec *model.TransactionRecord) (string, error) {
	if rec.Client == sender {
		return reasonApplied, nil
	}

	owner, err := repo.GetAccount(rec.Client)
	if err != nil {
		return reasonApplied, err
	}
	if owner.Locked {
		return reasonLocked, nil
	}
	return reasonApplied, nil
}

func activeDispute(repo store.Repository, sender model.ClientID, tx model.TxID) (*model.TransactionRecord, string, error) {
	if reason, err := checkClient(repo, sender); reason != reasonApplied || err != nil {
		return nil, reason, err
	}

	rec, err := repo.GetActiveDispute(tx)
	if err != nil {
		if isNotFound(err) {
			return nil, reasonNoDispute, nil
		}
		return nil, reasonApplied, err
	}

	if reason, err := checkOwner(repo, sender, rec); reason != reasonApplied || err != nil {
		return nil, reason, err
	}

	return rec, reasonApplied, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrRecordNotFound)
}
