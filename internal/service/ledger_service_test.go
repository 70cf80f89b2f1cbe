package service

import (
	"errors"
	"os"
	"testing"

	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var amt = model.MustParseAmount

func openRepo(t *testing.T, driver string) store.Repository {
	t.Helper()
	if driver == constants.DriverSQLite {
		s, err := store.NewStore(constants.SQLiteInMemoryPath, os.DirFS("../.."))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}
	return store.NewMemoryStore()
}

func forEachDriver(t *testing.T, fn func(t *testing.T, driver string)) {
	for _, driver := range []string{constants.DriverMemory, constants.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			fn(t, driver)
		})
	}
}

func replay(t *testing.T, svc *Service, events ...model.Event) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, svc.Ledger.Process(ev))
	}
}

type wantAccount struct {
	client    model.ClientID
	available string
	held      string
	total     string
	locked    bool
}

func assertAccounts(t *testing.T, svc *Service, want ...wantAccount) {
	t.Helper()
	accounts, err := svc.Account.Snapshot()
	require.NoError(t, err)
	require.Len(t, accounts, len(want))

	for i, w := range want {
		got := accounts[i]
		assert.Equal(t, w.client, got.Client, "client")
		assert.Equal(t, w.available, got.Available.String(), "available of client %d", w.client)
		assert.Equal(t, w.held, got.Held.String(), "held of client %d", w.client)
		assert.Equal(t, w.total, got.Total().String(), "total of client %d", w.client)
		assert.Equal(t, w.locked, got.Locked, "locked of client %d", w.client)
	}
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name   string
		events []model.Event
		want   []wantAccount
	}{
		{
			name: "deposits accumulate",
			events: []model.Event{
				model.Deposit{Client: 1, Tx: 1, Amount: amt("1.0")},
				model.Deposit{Client: 1, Tx: 2, Amount: amt("2.0")},
			},
			want: []wantAccount{{1, "3.0000", "0.0000", "3.0000", false}},
		},
		{
			name: "withdrawal beyond available is ignored",
			events: []model.Event{
				model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
				model.Withdrawal{Client: 1, Tx: 2, Amount: amt("15")},
			},
			want: []wantAccount{{1, "10.0000", "0.0000", "10.0000", false}},
		},
		{
			name: "dispute holds funds",
			events: []model.Event{
				model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
				model.Dispute{Client: 1, Tx: 1},
			},
			want: []wantAccount{{1, "0.0000", "10.0000", "10.0000", false}},
		},
		{
			name: "resolve releases funds",
			events: []model.Event{
				model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
				model.Dispute{Client: 1, Tx: 1},
				model.Resolve{Client: 1, Tx: 1},
			},
			want: []wantAccount{{1, "10.0000", "0.0000", "10.0000", false}},
		},
		{
			name: "chargeback removes funds and locks",
			events: []model.Event{
				model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
				model.Dispute{Client: 1, Tx: 1},
				model.Chargeback{Client: 1, Tx: 1},
				model.Deposit{Client: 1, Tx: 3, Amount: amt("5")},
			},
			want: []wantAccount{{1, "0.0000", "0.0000", "0.0000", true}},
		},
		{
			name: "dispute of unknown transaction creates nothing",
			events: []model.Event{
				model.Dispute{Client: 1, Tx: 999},
			},
			want: nil,
		},
		{
			name: "deposits with four fractional digits",
			events: []model.Event{
				model.Deposit{Client: 1, Tx: 0, Amount: amt("10.5563")},
				model.Deposit{Client: 1, Tx: 1, Amount: amt("2.1234")},
				model.Deposit{Client: 1, Tx: 2, Amount: amt("13.5")},
				model.Deposit{Client: 1, Tx: 3, Amount: amt("1.3")},
				model.Deposit{Client: 2, Tx: 4, Amount: amt("10.5563")},
			},
			want: []wantAccount{
				{1, "27.4797", "0.0000", "27.4797", false},
				{2, "10.5563", "0.0000", "10.5563", false},
			},
		},
		{
			name: "mixed clients with disputes",
			events: []model.Event{
				model.Deposit{Client: 1, Tx: 0, Amount: amt("10.5563")},
				model.Deposit{Client: 1, Tx: 1, Amount: amt("2.1234")},
				model.Deposit{Client: 1, Tx: 2, Amount: amt("13.5")},
				model.Deposit{Client: 1, Tx: 3, Amount: amt("1.3")},
				model.Withdrawal{Client: 1, Tx: 4, Amount: amt("5.8367")},
				model.Deposit{Client: 2, Tx: 5, Amount: amt("10.5563")},
				model.Deposit{Client: 3, Tx: 6, Amount: amt("2.1234")},
				model.Deposit{Client: 2, Tx: 7, Amount: amt("13.5")},
				model.Deposit{Client: 3, Tx: 8, Amount: amt("1.3")},
				model.Withdrawal{Client: 2, Tx: 9, Amount: amt("5.8367")},
				model.Withdrawal{Client: 3, Tx: 10, Amount: amt("5.8367")},
				model.Withdrawal{Client: 1, Tx: 11, Amount: amt("5.8367")},
				model.Dispute{Client: 1, Tx: 3},
				model.Resolve{Client: 1, Tx: 3},
				model.Dispute{Client: 2, Tx: 5},
				model.Chargeback{Client: 2, Tx: 5},
				model.Dispute{Client: 3, Tx: 8},
			},
			want: []wantAccount{
				{1, "15.8063", "0.0000", "15.8063", false},
				{2, "7.6633", "0.0000", "7.6633", true},
				{3, "2.1234", "1.3000", "3.4234", false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forEachDriver(t, func(t *testing.T, driver string) {
				svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
				replay(t, svc, tt.events...)
				assertAccounts(t, svc, tt.want...)
			})
		})
	}
}

func TestLockedAccountIgnoresEverything(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
		replay(t, svc,
			model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
			model.Deposit{Client: 1, Tx: 2, Amount: amt("4")},
			model.Dispute{Client: 1, Tx: 1},
			model.Dispute{Client: 1, Tx: 2},
			model.Chargeback{Client: 1, Tx: 1},
			// every later event for client 1 is a no-op
			model.Withdrawal{Client: 1, Tx: 3, Amount: amt("1")},
			model.Resolve{Client: 1, Tx: 2},
			model.Chargeback{Client: 1, Tx: 2},
			model.Deposit{Client: 1, Tx: 4, Amount: amt("100")},
		)
		assertAccounts(t, svc, wantAccount{1, "0.0000", "4.0000", "4.0000", true})

		// the ignored deposit was never recorded
		repo := svc.Account.repo
		_, err := repo.GetTransaction(4)
		require.ErrorIs(t, err, store.ErrRecordNotFound)

		// an unlocked client cannot move funds of the locked owner either
		replay(t, svc,
			model.Deposit{Client: 2, Tx: 5, Amount: amt("3")},
			model.Dispute{Client: 2, Tx: 1},
			model.Resolve{Client: 2, Tx: 2},
			model.Chargeback{Client: 2, Tx: 2},
		)
		assertAccounts(t, svc,
			wantAccount{1, "0.0000", "4.0000", "4.0000", true},
			wantAccount{2, "3.0000", "0.0000", "3.0000", false},
		)

		stats := svc.Ledger.Stats()
		assert.Equal(t, 1, stats[constants.TypeDispute].Reasons[reasonLocked])
		assert.Equal(t, 2, stats[constants.TypeResolve].Reasons[reasonLocked])
		assert.Equal(t, 2, stats[constants.TypeChargeback].Reasons[reasonLocked])

		_, err = repo.GetActiveDispute(2)
		require.NoError(t, err)
	})
}

func TestBalanceOverflowAbortsEvent(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
		replay(t, svc, model.Deposit{Client: 1, Tx: 1, Amount: amt("922337203685477")})

		err := svc.Ledger.Process(model.Deposit{Client: 1, Tx: 2, Amount: amt("922337203685477")})
		require.ErrorIs(t, err, model.ErrAmountRange)

		assertAccounts(t, svc, wantAccount{1, "922337203685477.0000", "0.0000", "922337203685477.0000", false})
		_, err = svc.Account.repo.GetTransaction(2)
		require.ErrorIs(t, err, store.ErrRecordNotFound)
	})
}

func TestDisputeFamilyNoOps(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
		replay(t, svc,
			model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
			model.Resolve{Client: 1, Tx: 1},
			model.Chargeback{Client: 1, Tx: 1},
			model.Resolve{Client: 1, Tx: 42},
			model.Dispute{Client: 9, Tx: 1},
		)
		assertAccounts(t, svc, wantAccount{1, "10.0000", "0.0000", "10.0000", false})

		stats := svc.Ledger.Stats()
		assert.Equal(t, 2, stats[constants.TypeResolve].Ignored)
		assert.Equal(t, 2, stats[constants.TypeResolve].Reasons[reasonNoDispute])
		assert.Equal(t, 1, stats[constants.TypeChargeback].Reasons[reasonNoDispute])
		assert.Equal(t, 1, stats[constants.TypeDispute].Reasons[reasonUnknownClient])
		assert.Equal(t, 5, stats.Total())
	})
}

func TestDuplicateDisputeIsIgnored(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
		replay(t, svc,
			model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
			model.Dispute{Client: 1, Tx: 1},
			model.Dispute{Client: 1, Tx: 1},
		)
		assertAccounts(t, svc, wantAccount{1, "0.0000", "10.0000", "10.0000", false})

		replay(t, svc,
			model.Resolve{Client: 1, Tx: 1},
			model.Resolve{Client: 1, Tx: 1},
		)
		assertAccounts(t, svc, wantAccount{1, "10.0000", "0.0000", "10.0000", false})
	})
}

func TestDisputeMovesRecordOwner(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
		replay(t, svc,
			model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
			model.Deposit{Client: 2, Tx: 2, Amount: amt("1")},
			model.Dispute{Client: 2, Tx: 1},
		)
		assertAccounts(t, svc,
			wantAccount{1, "0.0000", "10.0000", "10.0000", false},
			wantAccount{2, "1.0000", "0.0000", "1.0000", false},
		)
	})
}

func TestFailedWithdrawalRecording(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		t.Run("recorded by default", func(t *testing.T) {
			svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
			replay(t, svc,
				model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
				model.Withdrawal{Client: 1, Tx: 2, Amount: amt("15")},
				model.Dispute{Client: 1, Tx: 2},
			)
			// the failed withdrawal is still disputable
			assertAccounts(t, svc, wantAccount{1, "-5.0000", "15.0000", "10.0000", false})
		})

		t.Run("dropped when disabled", func(t *testing.T) {
			cfg := config.NewDefault()
			cfg.Ledger.RecordFailedWithdrawals = false
			svc := NewService(openRepo(t, driver), cfg, nil)
			replay(t, svc,
				model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
				model.Withdrawal{Client: 1, Tx: 2, Amount: amt("15")},
				model.Dispute{Client: 1, Tx: 2},
			)
			assertAccounts(t, svc, wantAccount{1, "10.0000", "0.0000", "10.0000", false})
		})
	})
}

func TestWithdrawalNeverOverdraws(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
		replay(t, svc,
			model.Withdrawal{Client: 4, Tx: 1, Amount: amt("0.0001")},
			model.Deposit{Client: 4, Tx: 2, Amount: amt("3")},
			model.Withdrawal{Client: 4, Tx: 3, Amount: amt("3")},
			model.Withdrawal{Client: 4, Tx: 4, Amount: amt("0.0001")},
		)
		// a withdrawal for an unseen client still opens the account
		assertAccounts(t, svc, wantAccount{4, "0.0000", "0.0000", "0.0000", false})
	})
}

func TestDuplicateTransactionIDIsFatal(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		svc := NewService(openRepo(t, driver), config.NewDefault(), nil)
		replay(t, svc, model.Deposit{Client: 1, Tx: 1, Amount: amt("10")})

		err := svc.Ledger.Process(model.Deposit{Client: 1, Tx: 1, Amount: amt("5")})
		require.ErrorIs(t, err, store.ErrTransactionExists)

		// the rejected event left no balance effect behind
		assertAccounts(t, svc, wantAccount{1, "10.0000", "0.0000", "10.0000", false})
	})
}

func TestNegativeAmountIsRejected(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), config.NewDefault(), nil)
	err := svc.Ledger.Process(model.Deposit{Client: 1, Tx: 1, Amount: -1})
	require.ErrorIs(t, err, ErrNegativeAmount)
	assertAccounts(t, svc)
}

var errBoom = errors.New("boom")

// faultyRepo fails the named operation inside every transaction.
type faultyRepo struct {
	store.Repository
	failOn string
}

func (f *faultyRepo) ExecTx(fn func(store.Repository) error) error {
	return f.Repository.ExecTx(func(tx store.Repository) error {
		return fn(&faultyRepo{Repository: tx, failOn: f.failOn})
	})
}

func (f *faultyRepo) UpdateBalances(id model.ClientID, a, h model.Amount, cond *store.Condition) (bool, error) {
	if f.failOn == "UpdateBalances" {
		return false, errBoom
	}
	return f.Repository.UpdateBalances(id, a, h, cond)
}

func (f *faultyRepo) RemoveDispute(id model.TxID) error {
	if f.failOn == "RemoveDispute" {
		return errBoom
	}
	return f.Repository.RemoveDispute(id)
}

func TestStoreFailureRollsBackEvent(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		t.Run("deposit", func(t *testing.T) {
			repo := openRepo(t, driver)
			svc := NewService(&faultyRepo{Repository: repo, failOn: "UpdateBalances"}, config.NewDefault(), nil)

			err := svc.Ledger.Process(model.Deposit{Client: 1, Tx: 1, Amount: amt("10")})
			require.ErrorIs(t, err, errBoom)

			_, err = repo.GetTransaction(1)
			require.ErrorIs(t, err, store.ErrRecordNotFound)
			_, err = repo.GetAccount(1)
			require.ErrorIs(t, err, store.ErrRecordNotFound)
		})

		t.Run("chargeback", func(t *testing.T) {
			repo := openRepo(t, driver)
			healthy := NewService(repo, config.NewDefault(), nil)
			replay(t, healthy,
				model.Deposit{Client: 1, Tx: 1, Amount: amt("10")},
				model.Dispute{Client: 1, Tx: 1},
			)

			svc := NewService(&faultyRepo{Repository: repo, failOn: "RemoveDispute"}, config.NewDefault(), nil)
			err := svc.Ledger.Process(model.Chargeback{Client: 1, Tx: 1})
			require.ErrorIs(t, err, errBoom)

			assertAccounts(t, healthy, wantAccount{1, "0.0000", "10.0000", "10.0000", false})
			_, err = repo.GetActiveDispute(1)
			require.NoError(t, err)
		})
	})
}
