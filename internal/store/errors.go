package store

import "errors"

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrTransactionExists   = errors.New("transaction already exists")
	ErrDisputeExists       = errors.New("dispute already exists")
	ErrConstraintViolation = errors.New("database constraint violation")
	ErrNestedTx            = errors.New("store is already in a transaction")
)
