package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
)

var (
	ErrMissingHeader = errors.New("missing header row")
	ErrMissingColumn = errors.New("missing column")
	ErrUnknownType   = errors.New("unknown transaction type")
	ErrMissingField  = errors.New("missing field")
	ErrMissingAmount = errors.New("amount is required")
)

// ParseError reports a malformed row of the input stream.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader decodes events from a CSV stream with a mandatory header row.
// Columns are located by name so their order may vary; the amount column
// may be omitted entirely when no row carries an amount.
type Reader struct {
	csv    *csv.Reader
	index  map[string]int
	header bool
}

func New(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	return &Reader{csv: cr}
}

// Next returns the next event, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (model.Event, error) {
	if !r.header {
		if err := r.readHeader(); err != nil {
			return nil, err
		}
	}

	for {
		record, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, readErr(err)
		}

		if blank(record) {
			continue
		}

		ev, err := r.decode(record)
		if err != nil {
			return nil, r.wrap(err)
		}
		return ev, nil
	}
}

// Each calls fn for every event in the stream and stops at the first error.
func (r *Reader) Each(fn func(model.Event) error) error {
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

func (r *Reader) readHeader() error {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &ParseError{Line: 1, Err: ErrMissingHeader}
		}
		return readErr(err)
	}

	r.index = make(map[string]int, len(record))
	for i, name := range record {
		r.index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, col := range []string{constants.ColumnType, constants.ColumnClient, constants.ColumnTx} {
		if _, ok := r.index[col]; !ok {
			return &ParseError{Line: 1, Err: fmt.Errorf("%w %q", ErrMissingColumn, col)}
		}
	}

	r.header = true
	return nil
}

func (r *Reader) decode(record []string) (model.Event, error) {
	typ := strings.ToLower(r.field(record, constants.ColumnType))

	client, err := r.clientID(record)
	if err != nil {
		return nil, err
	}

	tx, err := r.txID(record)
	if err != nil {
		return nil, err
	}

	rawAmount := r.field(record, constants.ColumnAmount)

	switch typ {
	case constants.TypeDeposit, constants.TypeWithdrawal:
		if rawAmount == "" {
			return nil, fmt.Errorf("%s: %w", typ, ErrMissingAmount)
		}
		amount, err := model.ParseAmount(rawAmount)
		if err != nil {
			return nil, err
		}
		if typ == constants.TypeDeposit {
			return model.Deposit{Client: client, Tx: tx, Amount: amount}, nil
		}
		return model.Withdrawal{Client: client, Tx: tx, Amount: amount}, nil

	case constants.TypeDispute, constants.TypeResolve, constants.TypeChargeback:
		// Any amount on a dispute family row is ignored.
		switch typ {
		case constants.TypeDispute:
			return model.Dispute{Client: client, Tx: tx}, nil
		case constants.TypeResolve:
			return model.Resolve{Client: client, Tx: tx}, nil
		default:
			return model.Chargeback{Client: client, Tx: tx}, nil
		}

	case "":
		return nil, fmt.Errorf("%w %q", ErrMissingField, constants.ColumnType)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, typ)
	}
}

func (r *Reader) clientID(record []string) (model.ClientID, error) {
	raw := r.field(record, constants.ColumnClient)
	if raw == "" {
		return 0, fmt.Errorf("%w %q", ErrMissingField, constants.ColumnClient)
	}

	v, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid client %q: %w", raw, err)
	}
	return model.ClientID(v), nil
}

func (r *Reader) txID(record []string) (model.TxID, error) {
	raw := r.field(record, constants.ColumnTx)
	if raw == "" {
		return 0, fmt.Errorf("%w %q", ErrMissingField, constants.ColumnTx)
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid tx %q: %w", raw, err)
	}
	return model.TxID(v), nil
}

// field returns the trimmed value of the named column, or "" when the row
// is too short to contain it.
func (r *Reader) field(record []string, name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// wrap attaches the line of the record just read to a decoding error.
func (r *Reader) wrap(err error) error {
	line, _ := r.csv.FieldPos(0)
	return &ParseError{Line: line, Err: err}
}

func readErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("failed to read events: %w", err)
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
