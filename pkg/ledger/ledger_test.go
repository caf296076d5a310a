package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nairv/dailycollect/pkg/models"
	"github.com/nairv/dailycollect/pkg/store"
)

// MockStore is a simple in-memory implementation of the Store interface
// for testing.
type MockStore struct {
	datasets map[string][]store.Record
	writes   int
}

func NewMockStore() *MockStore {
	return &MockStore{datasets: make(map[string][]store.Record)}
}

func (m *MockStore) Read(name string) ([]store.Record, error) {
	return m.datasets[name], nil
}

func (m *MockStore) Write(name string, records []store.Record) error {
	m.datasets[name] = records
	m.writes++
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

func newTestLedger() (*Ledger, *MockStore) {
	mock := NewMockStore()
	l := NewLedger(mock)
	l.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return l, mock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddLoan_FirstLoan(t *testing.T) {
	l, mock := newTestLedger()

	id, err := l.AddLoan("Ravi Kumar", "9876543210", dec("1000"), dec("100"), 10, models.ModeCash)
	require.NoError(t, err)
	assert.Equal(t, "L0001", id)

	active, err := l.ActiveLoans()
	require.NoError(t, err)
	require.Len(t, active, 1)

	loan := active[0]
	assert.Equal(t, "L0001", loan.ID)
	assert.Equal(t, models.StatusActive, loan.Status)
	assert.True(t, loan.CollectedAmount.IsZero())
	assert.True(t, loan.RemainingAmount.Equal(loan.TotalAmount))
	// End date persists date-only: creation day plus the term.
	assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), loan.EndDate)
	assert.Nil(t, loan.CompletionDate)

	// All three record sets persisted together.
	assert.Equal(t, 3, mock.writes)
}

func TestAddLoan_SequentialIDs(t *testing.T) {
	l, _ := newTestLedger()

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := l.AddLoan("Party", "9876543210", dec("500"), dec("50"), 10, models.ModeUPI)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("L%04d", i+1), id)
		assert.False(t, seen[id])
		seen[id] = true
	}

	// Completing a loan must not free its number for reuse.
	require.NoError(t, l.AddCollection("L0001", dec("500"), 10, models.ModeUPI))
	id, err := l.AddLoan("Party", "9876543210", dec("500"), dec("50"), 10, models.ModeUPI)
	require.NoError(t, err)
	assert.Equal(t, "L0004", id)
}

func TestAddCollection_PartialKeepsLoanActive(t *testing.T) {
	l, _ := newTestLedger()

	id, err := l.AddLoan("Ravi Kumar", "9876543210", dec("1000"), dec("100"), 10, models.ModeCash)
	require.NoError(t, err)

	require.NoError(t, l.AddCollection(id, dec("400"), 4, models.ModeUPI))

	active, err := l.ActiveLoans()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].CollectedAmount.Equal(dec("400")))
	assert.True(t, active[0].RemainingAmount.Equal(dec("600")))
	assert.Equal(t, models.StatusActive, active[0].Status)

	completed, err := l.CompletedLoans()
	require.NoError(t, err)
	assert.Empty(t, completed)

	collections, err := l.Collections()
	require.NoError(t, err)
	require.Len(t, collections, 1)
	coll := collections[0]
	assert.Equal(t, "C00001", coll.ID)
	assert.Equal(t, id, coll.LoanID)
	assert.Equal(t, "Ravi Kumar", coll.PartyName)
	assert.True(t, coll.AmountCollected.Equal(dec("400")))
	assert.Equal(t, 4, coll.DaysCount)
	assert.Equal(t, models.ModeUPI, coll.PaymentMode)
}

func TestAddCollection_FullRepaymentCompletesLoan(t *testing.T) {
	l, _ := newTestLedger()

	id, err := l.AddLoan("Ravi Kumar", "9876543210", dec("1000"), dec("100"), 10, models.ModeCash)
	require.NoError(t, err)

	require.NoError(t, l.AddCollection(id, dec("1000"), 10, models.ModeCash))

	active, err := l.ActiveLoans()
	require.NoError(t, err)
	assert.Empty(t, active)

	completed, err := l.CompletedLoans()
	require.NoError(t, err)
	require.Len(t, completed, 1)
	loan := completed[0]
	assert.Equal(t, id, loan.ID)
	assert.Equal(t, models.StatusCompleted, loan.Status)
	assert.True(t, loan.RemainingAmount.IsZero())
	assert.True(t, loan.CollectedAmount.Equal(dec("1000")))
	require.NotNil(t, loan.CompletionDate)

	collections, err := l.Collections()
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "C00001", collections[0].ID)
	assert.Equal(t, id, collections[0].LoanID)
}

func TestAddCollection_SequenceToExactCompletion(t *testing.T) {
	l, _ := newTestLedger()

	id, err := l.AddLoan("Ravi Kumar", "9876543210", dec("1000"), dec("100"), 10, models.ModeCash)
	require.NoError(t, err)

	for _, amount := range []string{"300", "300", "400"} {
		require.NoError(t, l.AddCollection(id, dec(amount), 3, models.ModeCash))
	}

	active, err := l.ActiveLoans()
	require.NoError(t, err)
	assert.Empty(t, active)

	completed, err := l.CompletedLoans()
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.True(t, completed[0].RemainingAmount.IsZero())

	collections, err := l.Collections()
	require.NoError(t, err)
	require.Len(t, collections, 3)
	assert.Equal(t, "C00003", collections[2].ID)
}

func TestAddCollection_UnknownLoan(t *testing.T) {
	l, _ := newTestLedger()

	err := l.AddCollection("L9999", dec("100"), 1, models.ModeCash)
	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestAddCollection_CompletedLoanRejected(t *testing.T) {
	l, _ := newTestLedger()

	id, err := l.AddLoan("Ravi Kumar", "9876543210", dec("500"), dec("50"), 10, models.ModeCash)
	require.NoError(t, err)
	require.NoError(t, l.AddCollection(id, dec("500"), 10, models.ModeCash))

	err = l.AddCollection(id, dec("100"), 1, models.ModeCash)
	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestAddCollection_ExceedsRemaining(t *testing.T) {
	l, mock := newTestLedger()

	id, err := l.AddLoan("Ravi Kumar", "9876543210", dec("1000"), dec("100"), 10, models.ModeCash)
	require.NoError(t, err)
	writesBefore := mock.writes

	err = l.AddCollection(id, dec("1500"), 1, models.ModeCash)
	assert.ErrorIs(t, err, ErrAmountExceedsRemaining)

	// No state change on rejection.
	assert.Equal(t, writesBefore, mock.writes)
	active, err := l.ActiveLoans()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].RemainingAmount.Equal(dec("1000")))
	collections, err := l.Collections()
	require.NoError(t, err)
	assert.Empty(t, collections)
}

func TestCollectionsBetween(t *testing.T) {
	l, _ := newTestLedger()

	id, err := l.AddLoan("Ravi Kumar", "9876543210", dec("1000"), dec("100"), 10, models.ModeCash)
	require.NoError(t, err)
	require.NoError(t, l.AddCollection(id, dec("200"), 2, models.ModeCash))
	require.NoError(t, l.AddCollection(id, dec("300"), 3, models.ModeUPI))

	// Range covering the collection day, bounds inclusive.
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	collections, total, err := l.CollectionsBetween(from, to)
	require.NoError(t, err)
	assert.Len(t, collections, 2)
	assert.True(t, total.Equal(dec("500")))

	// Range after every collection.
	from = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	collections, total, err = l.CollectionsBetween(from, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, collections)
	assert.True(t, total.IsZero())

	// Unbounded range returns everything.
	collections, total, err = l.CollectionsBetween(time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, collections, 2)
	assert.True(t, total.Equal(dec("500")))
}

func TestSummary(t *testing.T) {
	l, _ := newTestLedger()

	first, err := l.AddLoan("Ravi Kumar", "9876543210", dec("1000"), dec("100"), 10, models.ModeCash)
	require.NoError(t, err)
	second, err := l.AddLoan("Meena Devi", "9876500000", dec("500"), dec("50"), 10, models.ModeUPI)
	require.NoError(t, err)

	require.NoError(t, l.AddCollection(first, dec("400"), 4, models.ModeCash))
	require.NoError(t, l.AddCollection(second, dec("500"), 10, models.ModeUPI))

	summary, err := l.Summary()
	require.NoError(t, err)

	// Totals over active loans only; collected over all collections.
	assert.True(t, summary.TotalGiven.Equal(dec("1000")), "got %s", summary.TotalGiven)
	assert.True(t, summary.TotalRemaining.Equal(dec("600")), "got %s", summary.TotalRemaining)
	assert.True(t, summary.TotalCollected.Equal(dec("900")), "got %s", summary.TotalCollected)
}

func TestReadsAreIdempotent(t *testing.T) {
	l, _ := newTestLedger()

	id, err := l.AddLoan("Ravi Kumar", "9876543210", dec("1000"), dec("100"), 10, models.ModeCash)
	require.NoError(t, err)
	require.NoError(t, l.AddCollection(id, dec("100"), 1, models.ModeCash))

	firstActive, err := l.ActiveLoans()
	require.NoError(t, err)
	secondActive, err := l.ActiveLoans()
	require.NoError(t, err)
	assert.Equal(t, firstActive, secondActive)

	firstColl, err := l.Collections()
	require.NoError(t, err)
	secondColl, err := l.Collections()
	require.NoError(t, err)
	assert.Equal(t, firstColl, secondColl)
}
