package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ExpenseForm is the raw expense entry form as posted by the browser.
// Recurring selects the template branch instead of a one-time expense.
type ExpenseForm struct {
	Date        string
	Amount      string
	CategoryID  string
	Description string
	Recurring   bool
	Frequency   string
	EndDate     string
}

// ValidatedExpense is an ExpenseForm that passed Validate.
type ValidatedExpense struct {
	Date        Date
	Amount      decimal.Decimal
	CategoryID  int64
	Description string
	Recurring   bool
	Frequency   Frequency
	EndDate     *Date
}

// Validate checks required fields first and the amount second, so an
// empty form always reports ErrMissingFields.
func (f ExpenseForm) Validate() (ValidatedExpense, error) {
	date := strings.TrimSpace(f.Date)
	amount := strings.TrimSpace(f.Amount)
	catID := strings.TrimSpace(f.CategoryID)
	desc := strings.TrimSpace(f.Description)

	if date == "" || amount == "" || catID == "" || desc == "" {
		return ValidatedExpense{}, ErrMissingFields
	}
	id, err := strconv.ParseInt(catID, 10, 64)
	if err != nil {
		return ValidatedExpense{}, ErrMissingFields
	}
	d, err := ParseDate(date)
	if err != nil {
		return ValidatedExpense{}, ErrMissingFields
	}
	amt, err := ParseAmount(amount)
	if err != nil {
		return ValidatedExpense{}, err
	}

	v := ValidatedExpense{
		Date:        d,
		Amount:      amt,
		CategoryID:  id,
		Description: desc,
		Recurring:   f.Recurring,
	}
	if !f.Recurring {
		return v, nil
	}

	freq, err := ParseFrequency(f.Frequency)
	if err != nil {
		return ValidatedExpense{}, err
	}
	v.Frequency = freq
	if end := strings.TrimSpace(f.EndDate); end != "" {
		ed, err := ParseDate(end)
		if err != nil || ed.Before(d.Time) {
			return ValidatedExpense{}, ErrInvalidEndDate
		}
		v.EndDate = &ed
	}
	return v, nil
}

// Expense builds the one-time expense payload.
func (v ValidatedExpense) Expense() Expense {
	return Expense{
		Date:        v.Date,
		Amount:      v.Amount,
		CategoryID:  v.CategoryID,
		Description: v.Description,
	}
}

// Template builds the recurring template payload; the form date is the start date.
func (v ValidatedExpense) Template() RecurringTemplate {
	return RecurringTemplate{
		CategoryID:  v.CategoryID,
		Description: v.Description,
		Amount:      v.Amount,
		Frequency:   v.Frequency,
		StartDate:   v.Date,
		EndDate:     v.EndDate,
		Active:      true,
	}
}
