package store

import (
	"fmt"
	"sort"

	"github.com/hance08/tally/internal/model"
)

// MemoryStore is a map backed Repository owned by a single writer.
// Writes made inside ExecTx are journaled so that a failed event can be
// rolled back entry by entry.
type MemoryStore struct {
	accounts     map[model.ClientID]*model.Account
	transactions map[model.TxID]model.TransactionRecord
	disputes     map[model.TxID]struct{}

	// undo is non-nil while ExecTx is running.
	undo []func()
}

var _ Repository = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{}
	_ = m.Reset()
	return m
}

func (m *MemoryStore) ExecTx(fn func(Repository) error) error {
	if m.undo != nil {
		return ErrNestedTx
	}

	m.undo = make([]func(), 0, 4)
	defer func() {
		m.undo = nil
	}()

	if err := fn(m); err != nil {
		for i := len(m.undo) - 1; i >= 0; i-- {
			m.undo[i]()
		}
		return err
	}

	return nil
}

func (m *MemoryStore) journal(undo func()) {
	if m.undo != nil {
		m.undo = append(m.undo, undo)
	}
}

func (m *MemoryStore) Reset() error {
	m.accounts = make(map[model.ClientID]*model.Account)
	m.transactions = make(map[model.TxID]model.TransactionRecord)
	m.disputes = make(map[model.TxID]struct{})
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) GetAccount(id model.ClientID) (*model.Account, error) {
	acc, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, ErrRecordNotFound)
	}

	cp := *acc
	return &cp, nil
}

func (m *MemoryStore) CreateAccount(id model.ClientID) (*model.Account, error) {
	if _, ok := m.accounts[id]; ok {
		return nil, fmt.Errorf("failed to create account %d: %w", id, ErrConstraintViolation)
	}

	m.accounts[id] = &model.Account{Client: id}
	m.journal(func() { delete(m.accounts, id) })

	return &model.Account{Client: id}, nil
}

func (m *MemoryStore) UpdateBalances(id model.ClientID, availableDelta, heldDelta model.Amount, cond *Condition) (bool, error) {
	acc, ok := m.accounts[id]
	if !ok {
		return false, fmt.Errorf("account %d: %w", id, ErrRecordNotFound)
	}

	if cond != nil && acc.Available < cond.MinAvailable {
		return false, nil
	}

	available, held, err := nextBalances(acc, availableDelta, heldDelta)
	if err != nil {
		return false, err
	}
	if held < 0 {
		return false, fmt.Errorf("failed to update balances of account %d: %w: held would be negative",
			id, ErrConstraintViolation)
	}

	prev := *acc
	acc.Available = available
	acc.Held = held
	m.journal(func() { *acc = prev })

	return true, nil
}

func (m *MemoryStore) LockAccount(id model.ClientID) error {
	acc, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("account %d: %w", id, ErrRecordNotFound)
	}

	prev := acc.Locked
	acc.Locked = true
	m.journal(func() { acc.Locked = prev })

	return nil
}

func (m *MemoryStore) ListAccounts() ([]*model.Account, error) {
	accounts := make([]*model.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		cp := *acc
		accounts = append(accounts, &cp)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Client < accounts[j].Client
	})

	return accounts, nil
}

func (m *MemoryStore) RecordTransaction(rec model.TransactionRecord) error {
	if _, ok := m.transactions[rec.ID]; ok {
		return fmt.Errorf("failed to insert transaction %d: %w", rec.ID, ErrTransactionExists)
	}
	if _, ok := m.accounts[rec.Client]; !ok {
		return fmt.Errorf("failed to insert transaction %d: %w: unknown account %d",
			rec.ID, ErrConstraintViolation, rec.Client)
	}

	m.transactions[rec.ID] = rec
	m.journal(func() { delete(m.transactions, rec.ID) })

	return nil
}

func (m *MemoryStore) GetTransaction(id model.TxID) (*model.TransactionRecord, error) {
	rec, ok := m.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %d: %w", id, ErrRecordNotFound)
	}

	return &rec, nil
}

func (m *MemoryStore) InsertDispute(id model.TxID) error {
	if _, ok := m.disputes[id]; ok {
		return fmt.Errorf("failed to insert dispute for transaction %d: %w", id, ErrDisputeExists)
	}
	if _, ok := m.transactions[id]; !ok {
		return fmt.Errorf("failed to insert dispute for transaction %d: %w: unknown transaction",
			id, ErrConstraintViolation)
	}

	m.disputes[id] = struct{}{}
	m.journal(func() { delete(m.disputes, id) })

	return nil
}

func (m *MemoryStore) GetActiveDispute(id model.TxID) (*model.TransactionRecord, error) {
	if _, ok := m.disputes[id]; !ok {
		return nil, fmt.Errorf("transaction %d: %w", id, ErrRecordNotFound)
	}

	return m.GetTransaction(id)
}

func (m *MemoryStore) RemoveDispute(id model.TxID) error {
	if _, ok := m.disputes[id]; !ok {
		return fmt.Errorf("dispute for transaction %d: %w", id, ErrRecordNotFound)
	}

	delete(m.disputes, id)
	m.journal(func() { m.disputes[id] = struct{}{} })

	return nil
}
