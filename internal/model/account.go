package model

// ClientID identifies an account. One account exists per client.
type ClientID uint16

// TxID is the caller-supplied transaction identifier.
type TxID uint32

// Account is the balance state of one client.
type Account struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Locked    bool
}

// Total is always derived, never stored.
func (a Account) Total() Amount {
	return a.Available + a.Held
}

// TxKind is the kind of a persisted transaction record.
type TxKind string

const (
	KindDeposit    TxKind = "deposit"
	KindWithdrawal TxKind = "withdrawal"
)

// TransactionRecord is a deposit or withdrawal kept so that later dispute
// events can reference it. Records are never mutated.
type TransactionRecord struct {
	ID     TxID
	Kind   TxKind
	Client ClientID
	Amount Amount
}
