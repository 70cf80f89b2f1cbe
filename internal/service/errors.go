package service

import "errors"

var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrNegativeAmount = errors.New("amount must not be negative")
)
