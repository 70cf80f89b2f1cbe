package model

import "github.com/hance08/tally/internal/constants"

// Event is one entry of the input stream. The concrete type is one of
// Deposit, Withdrawal, Dispute, Resolve or Chargeback.
type Event interface {
	ClientID() ClientID
	TxID() TxID
	Type() string
	isEvent()
}

type Deposit struct {
	Client ClientID
	Tx     TxID
	Amount Amount
}

type Withdrawal struct {
	Client ClientID
	Tx     TxID
	Amount Amount
}

// Dispute moves the referenced transaction's amount from available to held.
type Dispute struct {
	Client ClientID
	Tx     TxID
}

// Resolve releases a disputed amount back to available.
type Resolve struct {
	Client ClientID
	Tx     TxID
}

// Chargeback removes a disputed amount and locks the account.
type Chargeback struct {
	Client ClientID
	Tx     TxID
}

func (e Deposit) ClientID() ClientID    { return e.Client }
func (e Withdrawal) ClientID() ClientID { return e.Client }
func (e Dispute) ClientID() ClientID    { return e.Client }
func (e Resolve) ClientID() ClientID    { return e.Client }
func (e Chargeback) ClientID() ClientID { return e.Client }

func (e Deposit) TxID() TxID    { return e.Tx }
func (e Withdrawal) TxID() TxID { return e.Tx }
func (e Dispute) TxID() TxID    { return e.Tx }
func (e Resolve) TxID() TxID    { return e.Tx }
func (e Chargeback) TxID() TxID { return e.Tx }

func (Deposit) Type() string    { return constants.TypeDeposit }
func (Withdrawal) Type() string { return constants.TypeWithdrawal }
func (Dispute) Type() string    { return constants.TypeDispute }
func (Resolve) Type() string    { return constants.TypeResolve }
func (Chargeback) Type() string { return constants.TypeChargeback }

func (Deposit) isEvent()    {}
func (Withdrawal) isEvent() {}
func (Dispute) isEvent()    {}
func (Resolve) isEvent()    {}
func (Chargeback) isEvent() {}
