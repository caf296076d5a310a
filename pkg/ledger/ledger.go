package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nairv/dailycollect/pkg/models"
	"github.com/nairv/dailycollect/pkg/store"
)

var (
	// ErrLoanNotFound means the loan id is unknown or the loan has
	// already completed.
	ErrLoanNotFound = errors.New("loan not found")
	// ErrAmountExceedsRemaining means a collection would push the
	// loan's remaining amount below zero.
	ErrAmountExceedsRemaining = errors.New("amount exceeds remaining balance")
)

// Ledger handles the business logic for loans and collections: creating
// loans, applying repayments and moving a loan from active to completed
// once it is fully repaid.
type Ledger struct {
	storage store.Store
	now     func() time.Time
}

// NewLedger creates a new Ledger over a Store implementation.
func NewLedger(s store.Store) *Ledger {
	return &Ledger{
		storage: s,
		now:     time.Now,
	}
}

// state is the full ledger as loaded for one read-modify-write cycle.
type state struct {
	active      []*models.Loan
	completed   []*models.Loan
	collections []*models.Collection
}

func (l *Ledger) loadState() (*state, error) {
	st := &state{}

	records, err := l.storage.Read(store.DatasetActiveLoans)
	if err != nil {
		return nil, fmt.Errorf("failed to read active loans: %w", err)
	}
	for _, rec := range records {
		loan, err := models.LoanFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("bad active loan record: %w", err)
		}
		st.active = append(st.active, loan)
	}

	records, err = l.storage.Read(store.DatasetCompletedLoans)
	if err != nil {
		return nil, fmt.Errorf("failed to read completed loans: %w", err)
	}
	for _, rec := range records {
		loan, err := models.LoanFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("bad completed loan record: %w", err)
		}
		st.completed = append(st.completed, loan)
	}

	records, err = l.storage.Read(store.DatasetCollections)
	if err != nil {
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}
	for _, rec := range records {
		coll, err := models.CollectionFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("bad collection record: %w", err)
		}
		st.collections = append(st.collections, coll)
	}

	return st, nil
}

// saveState writes all three record sets back. The writes are sequential
// with no cross-dataset transaction; a failure mid-way leaves the earlier
// datasets written.
func (l *Ledger) saveState(st *state) error {
	active := make([]store.Record, len(st.active))
	for i, loan := range st.active {
		active[i] = loan.ToRecord()
	}
	if err := l.storage.Write(store.DatasetActiveLoans, active); err != nil {
		return fmt.Errorf("failed to write active loans: %w", err)
	}

	completed := make([]store.Record, len(st.completed))
	for i, loan := range st.completed {
		completed[i] = loan.ToRecord()
	}
	if err := l.storage.Write(store.DatasetCompletedLoans, completed); err != nil {
		return fmt.Errorf("failed to write completed loans: %w", err)
	}

	collections := make([]store.Record, len(st.collections))
	for i, coll := range st.collections {
		collections[i] = coll.ToRecord()
	}
	if err := l.storage.Write(store.DatasetCollections, collections); err != nil {
		return fmt.Errorf("failed to write collections: %w", err)
	}

	return nil
}

// AddLoan creates a new active loan and returns its id. Ids number over
// the combined active and completed counts, so they stay unique as long
// as loans are never deleted (they never are).
func (l *Ledger) AddLoan(party, mobile string, total, daily decimal.Decimal, days int, mode models.PaymentMode) (string, error) {
	st, err := l.loadState()
	if err != nil {
		return "", err
	}

	now := l.now()
	loan := &models.Loan{
		ID:              fmt.Sprintf("L%04d", len(st.active)+len(st.completed)+1),
		Date:            now,
		PartyName:       party,
		MobileNumber:    mobile,
		TotalAmount:     total,
		DailyAmount:     daily,
		TotalDays:       days,
		EndDate:         now.AddDate(0, 0, days),
		PaymentMode:     mode,
		CollectedAmount: decimal.Zero,
		RemainingAmount: total,
		Status:          models.StatusActive,
	}

	st.active = append(st.active, loan)
	if err := l.saveState(st); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"loan_id": loan.ID,
		"party":   party,
		"total":   total.String(),
	}).Info("loan created")
	return loan.ID, nil
}

// AddCollection applies a repayment against an active loan. When the
// remaining amount reaches zero the loan is moved to the completed set
// and stamped with a completion timestamp. A collection larger than the
// remaining amount is rejected so the remaining-amount invariant can
// never go negative, whatever the caller checked.
func (l *Ledger) AddCollection(loanID string, amount decimal.Decimal, daysCount int, mode models.PaymentMode) error {
	st, err := l.loadState()
	if err != nil {
		return err
	}

	idx := -1
	for i, loan := range st.active {
		if loan.ID == loanID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLoanNotFound, loanID)
	}
	loan := st.active[idx]

	if amount.GreaterThan(loan.RemainingAmount) {
		return fmt.Errorf("%w: %s remaining on %s", ErrAmountExceedsRemaining, loan.RemainingAmount, loanID)
	}

	loan.CollectedAmount = loan.CollectedAmount.Add(amount)
	loan.RemainingAmount = loan.RemainingAmount.Sub(amount)

	now := l.now()
	completed := false
	if loan.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		completion := now
		loan.CompletionDate = &completion
		loan.Status = models.StatusCompleted
		st.completed = append(st.completed, loan)
		st.active = append(st.active[:idx], st.active[idx+1:]...)
		completed = true
	}

	coll := &models.Collection{
		ID:              fmt.Sprintf("C%05d", len(st.collections)+1),
		Date:            now,
		LoanID:          loanID,
		PartyName:       loan.PartyName,
		AmountCollected: amount,
		DaysCount:       daysCount,
		PaymentMode:     mode,
	}
	st.collections = append(st.collections, coll)

	if err := l.saveState(st); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"collection_id": coll.ID,
		"loan_id":       loanID,
		"amount":        amount.String(),
		"completed":     completed,
	}).Info("collection applied")
	return nil
}

// ActiveLoans returns the active record set.
func (l *Ledger) ActiveLoans() ([]*models.Loan, error) {
	st, err := l.loadState()
	if err != nil {
		return nil, err
	}
	return st.active, nil
}

// CompletedLoans returns the completed record set.
func (l *Ledger) CompletedLoans() ([]*models.Loan, error) {
	st, err := l.loadState()
	if err != nil {
		return nil, err
	}
	return st.completed, nil
}

// Collections returns every collection in order of creation.
func (l *Ledger) Collections() ([]*models.Collection, error) {
	st, err := l.loadState()
	if err != nil {
		return nil, err
	}
	return st.collections, nil
}

// CollectionsBetween filters collections by an inclusive date range on
// their timestamp. A zero from or to leaves that side unbounded.
func (l *Ledger) CollectionsBetween(from, to time.Time) ([]*models.Collection, decimal.Decimal, error) {
	st, err := l.loadState()
	if err != nil {
		return nil, decimal.Zero, err
	}

	filtered := []*models.Collection{}
	total := decimal.Zero
	for _, coll := range st.collections {
		if !from.IsZero() && coll.Date.Before(from) {
			continue
		}
		// The upper bound is a date, inclusive of the whole day.
		if !to.IsZero() && !coll.Date.Before(to.AddDate(0, 0, 1)) {
			continue
		}
		filtered = append(filtered, coll)
		total = total.Add(coll.AmountCollected)
	}
	return filtered, total, nil
}

// Summary holds the dashboard totals.
type Summary struct {
	TotalGiven     decimal.Decimal `json:"total_given"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
}

// Summary computes running totals: amounts given and still outstanding
// over active loans, and everything ever collected.
func (l *Ledger) Summary() (*Summary, error) {
	st, err := l.loadState()
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TotalGiven:     decimal.Zero,
		TotalCollected: decimal.Zero,
		TotalRemaining: decimal.Zero,
	}
	for _, loan := range st.active {
		s.TotalGiven = s.TotalGiven.Add(loan.TotalAmount)
		s.TotalRemaining = s.TotalRemaining.Add(loan.RemainingAmount)
	}
	for _, coll := range st.collections {
		s.TotalCollected = s.TotalCollected.Add(coll.AmountCollected)
	}
	return s, nil
}
