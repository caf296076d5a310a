package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nairv/dailycollect/pkg/store"
)

// Dataset value formats.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// PaymentMode enumerates how money changes hands.
type PaymentMode string

const (
	ModeCash  PaymentMode = "Cash"
	ModeUPI   PaymentMode = "UPI"
	ModeOther PaymentMode = "Other"
)

// ParseMode validates a payment mode string.
func ParseMode(s string) (PaymentMode, error) {
	switch PaymentMode(s) {
	case ModeCash, ModeUPI, ModeOther:
		return PaymentMode(s), nil
	}
	return "", fmt.Errorf("unknown payment mode %q", s)
}

// LoanStatus mirrors which record set holds the loan.
type LoanStatus string

const (
	StatusActive    LoanStatus = "Active"
	StatusCompleted LoanStatus = "Completed"
)

// Loan lives in either the active or the completed record set, never both.
// CompletionDate is set only once the loan moves to completed.
type Loan struct {
	ID              string          `json:"loan_id"`
	Date            time.Time       `json:"date"`
	PartyName       string          `json:"party_name"`
	MobileNumber    string          `json:"mobile_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DailyAmount     decimal.Decimal `json:"daily_amount"`
	TotalDays       int             `json:"total_days"`
	EndDate         time.Time       `json:"end_date"`
	PaymentMode     PaymentMode     `json:"payment_mode"`
	CollectedAmount decimal.Decimal `json:"collected_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          LoanStatus      `json:"status"`
	CompletionDate  *time.Time      `json:"completion_date,omitempty"`
}

// Collection is an immutable record of one repayment event. PartyName is a
// snapshot of the loan's party at collection time, kept on purpose so later
// renames do not rewrite history.
type Collection struct {
	ID              string          `json:"collection_id"`
	Date            time.Time       `json:"date"`
	LoanID          string          `json:"loan_id"`
	PartyName       string          `json:"party_name"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
	DaysCount       int             `json:"days_count"`
	PaymentMode     PaymentMode     `json:"payment_mode"`
}

// User is one row of the Users dataset.
type User struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

// ToRecord encodes the loan into dataset columns.
func (l *Loan) ToRecord() store.Record {
	rec := store.Record{
		"Loan_ID":          l.ID,
		"Date":             l.Date.Format(TimestampLayout),
		"Party_Name":       l.PartyName,
		"Mobile_Number":    l.MobileNumber,
		"Total_Amount":     l.TotalAmount.String(),
		"Daily_Amount":     l.DailyAmount.String(),
		"Total_Days":       strconv.Itoa(l.TotalDays),
		"End_Date":         l.EndDate.Format(DateLayout),
		"Payment_Mode":     string(l.PaymentMode),
		"Collected_Amount": l.CollectedAmount.String(),
		"Remaining_Amount": l.RemainingAmount.String(),
		"Status":           string(l.Status),
	}
	if l.CompletionDate != nil {
		rec["Completion_Date"] = l.CompletionDate.Format(TimestampLayout)
	}
	return rec
}

// LoanFromRecord decodes a loan from dataset columns.
func LoanFromRecord(rec store.Record) (*Loan, error) {
	date, err := time.Parse(TimestampLayout, rec["Date"])
	if err != nil {
		return nil, fmt.Errorf("parse Date: %w", err)
	}
	endDate, err := time.Parse(DateLayout, rec["End_Date"])
	if err != nil {
		return nil, fmt.Errorf("parse End_Date: %w", err)
	}
	total, err := decimal.NewFromString(rec["Total_Amount"])
	if err != nil {
		return nil, fmt.Errorf("parse Total_Amount: %w", err)
	}
	daily, err := decimal.NewFromString(rec["Daily_Amount"])
	if err != nil {
		return nil, fmt.Errorf("parse Daily_Amount: %w", err)
	}
	collected, err := decimal.NewFromString(rec["Collected_Amount"])
	if err != nil {
		return nil, fmt.Errorf("parse Collected_Amount: %w", err)
	}
	remaining, err := decimal.NewFromString(rec["Remaining_Amount"])
	if err != nil {
		return nil, fmt.Errorf("parse Remaining_Amount: %w", err)
	}
	days, err := strconv.Atoi(rec["Total_Days"])
	if err != nil {
		return nil, fmt.Errorf("parse Total_Days: %w", err)
	}

	loan := &Loan{
		ID:              rec["Loan_ID"],
		Date:            date,
		PartyName:       rec["Party_Name"],
		MobileNumber:    rec["Mobile_Number"],
		TotalAmount:     total,
		DailyAmount:     daily,
		TotalDays:       days,
		EndDate:         endDate,
		PaymentMode:     PaymentMode(rec["Payment_Mode"]),
		CollectedAmount: collected,
		RemainingAmount: remaining,
		Status:          LoanStatus(rec["Status"]),
	}
	if v := rec["Completion_Date"]; v != "" {
		completed, err := time.Parse(TimestampLayout, v)
		if err != nil {
			return nil, fmt.Errorf("parse Completion_Date: %w", err)
		}
		loan.CompletionDate = &completed
	}
	return loan, nil
}

// ToRecord encodes the collection into dataset columns.
func (c *Collection) ToRecord() store.Record {
	return store.Record{
		"Collection_ID":    c.ID,
		"Date":             c.Date.Format(TimestampLayout),
		"Loan_ID":          c.LoanID,
		"Party_Name":       c.PartyName,
		"Amount_Collected": c.AmountCollected.String(),
		"Days_Count":       strconv.Itoa(c.DaysCount),
		"Payment_Mode":     string(c.PaymentMode),
	}
}

// CollectionFromRecord decodes a collection from dataset columns.
func CollectionFromRecord(rec store.Record) (*Collection, error) {
	date, err := time.Parse(TimestampLayout, rec["Date"])
	if err != nil {
		return nil, fmt.Errorf("parse Date: %w", err)
	}
	amount, err := decimal.NewFromString(rec["Amount_Collected"])
	if err != nil {
		return nil, fmt.Errorf("parse Amount_Collected: %w", err)
	}
	days, err := strconv.Atoi(rec["Days_Count"])
	if err != nil {
		return nil, fmt.Errorf("parse Days_Count: %w", err)
	}

	return &Collection{
		ID:              rec["Collection_ID"],
		Date:            date,
		LoanID:          rec["Loan_ID"],
		PartyName:       rec["Party_Name"],
		AmountCollected: amount,
		DaysCount:       days,
		PaymentMode:     PaymentMode(rec["Payment_Mode"]),
	}, nil
}

// ToRecord encodes the user into dataset columns.
func (u *User) ToRecord() store.Record {
	return store.Record{
		"username":      u.Username,
		"name":          u.Name,
		"password_hash": u.PasswordHash,
	}
}

// UserFromRecord decodes a user from dataset columns.
func UserFromRecord(rec store.Record) *User {
	return &User{
		Username:     rec["username"],
		Name:         rec["name"],
		PasswordHash: rec["password_hash"],
	}
}
