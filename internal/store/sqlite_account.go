package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hance08/tally/internal/model"
)

func (s *Store) GetAccount(id model.ClientID) (*model.Account, error) {
	row := s.db.QueryRow("SELECT id, available, held, locked FROM accounts WHERE id = ?", id)

	acc := &model.Account{}
	err := row.Scan(&acc.Client, &acc.Available, &acc.Held, &acc.Locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query account %d: %w", id, err)
	}

	return acc, nil
}

func (s *Store) CreateAccount(id model.ClientID) (*model.Account, error) {
	_, err := s.db.Exec("INSERT INTO accounts (id, available, held, locked) VALUES (?, 0, 0, FALSE)", id)
	if err != nil {
		return nil, fmt.Errorf("failed to create account %d: %w", id, constraintErr(err, nil))
	}

	return &model.Account{Client: id}, nil
}

func (s *Store) UpdateBalances(id model.ClientID, availableDelta, heldDelta model.Amount, cond *Condition) (bool, error) {
	acc, err := s.GetAccount(id)
	if err != nil {
		return false, err
	}
	if cond != nil && acc.Available < cond.MinAvailable {
		return false, nil
	}
	// SQLite silently turns an overflowing integer sum into a REAL.
	if _, _, err := nextBalances(acc, availableDelta, heldDelta); err != nil {
		return false, err
	}

	query := `
        UPDATE accounts
        SET available = available + ?, held = held + ?
        WHERE id = ?`
	args := []any{availableDelta, heldDelta, id}

	if cond != nil {
		query += " AND available >= ?"
		args = append(args, cond.MinAvailable)
	}

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update balances of account %d: %w", id, constraintErr(err, nil))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

func (s *Store) LockAccount(id model.ClientID) error {
	result, err := s.db.Exec("UPDATE accounts SET locked = TRUE WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to lock account %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account %d: %w", id, ErrRecordNotFound)
	}

	return nil
}

func (s *Store) ListAccounts() ([]*model.Account, error) {
	rows, err := s.db.Query(`
        SELECT id, available, held, locked
        FROM accounts
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var accounts []*model.Account
	for rows.Next() {
		acc := &model.Account{}
		if err := rows.Scan(&acc.Client, &acc.Available, &acc.Held, &acc.Locked); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}
