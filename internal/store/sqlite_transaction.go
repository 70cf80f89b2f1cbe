package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hance08/tally/internal/model"
)

// RecordTransaction inserts a deposit or withdrawal record.
// It relies on the caller (Service layer) to wrap it in ExecTx for atomicity.
func (s *Store) RecordTransaction(rec model.TransactionRecord) error {
	_, err := s.db.Exec(`
        INSERT INTO transactions (id, kind, client_id, amount)
        VALUES (?, ?, ?, ?)
    `, rec.ID, string(rec.Kind), rec.Client, rec.Amount)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %d: %w", rec.ID, constraintErr(err, ErrTransactionExists))
	}

	return nil
}

func (s *Store) GetTransaction(id model.TxID) (*model.TransactionRecord, error) {
	row := s.db.QueryRow(`
        SELECT id, kind, client_id, amount
        FROM transactions
        WHERE id = ?
    `, id)

	return scanRecord(row, id)
}

func (s *Store) InsertDispute(id model.TxID) error {
	_, err := s.db.Exec("INSERT INTO disputes (transaction_id) VALUES (?)", id)
	if err != nil {
		return fmt.Errorf("failed to insert dispute for transaction %d: %w", id, constraintErr(err, ErrDisputeExists))
	}

	return nil
}

// GetActiveDispute returns the record under dispute, joined through the
// dispute marker.
func (s *Store) GetActiveDispute(id model.TxID) (*model.TransactionRecord, error) {
	row := s.db.QueryRow(`
        SELECT t.id, t.kind, t.client_id, t.amount
        FROM disputes d
        JOIN transactions t ON t.id = d.transaction_id
        WHERE d.transaction_id = ?
    `, id)

	return scanRecord(row, id)
}

func (s *Store) RemoveDispute(id model.TxID) error {
	result, err := s.db.Exec("DELETE FROM disputes WHERE transaction_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete dispute for transaction %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("dispute for transaction %d: %w", id, ErrRecordNotFound)
	}

	return nil
}

func scanRecord(row *sql.Row, id model.TxID) (*model.TransactionRecord, error) {
	rec := &model.TransactionRecord{}
	var kind string

	err := row.Scan(&rec.ID, &kind, &rec.Client, &rec.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query transaction %d: %w", id, err)
	}
	rec.Kind = model.TxKind(kind)

	return rec, nil
}
