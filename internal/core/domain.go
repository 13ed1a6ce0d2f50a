package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Mandatory   CategoryType = "MANDATORY"
	Leisure     CategoryType = "LEISURE"
	Investments CategoryType = "INVESTMENTS"
)

const (
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

type (
	CategoryType string

	Frequency string

	Category struct {
		ID     int64        `json:"id,omitempty"`
		Name   string       `json:"name" validate:"required,max=100"`
		Type   CategoryType `json:"type" validate:"required,oneof=MANDATORY LEISURE INVESTMENTS"`
		Color  string       `json:"color" validate:"required,hexcolor"`
		Active bool         `json:"active"`
	}

	Expense struct {
		ID          int64           `json:"id"`
		Date        Date            `json:"date"`
		Amount      decimal.Decimal `json:"amount"`
		CategoryID  int64           `json:"categoryId"`
		Category    string          `json:"category,omitempty"` // name, when the backend sends one
		Description string          `json:"description"`
	}

	RecurringTemplate struct {
		ID                int64           `json:"id"`
		CategoryID        int64           `json:"categoryId"`
		Description       string          `json:"description"`
		Amount            decimal.Decimal `json:"amount"`
		Frequency         Frequency       `json:"frequency"`
		StartDate         Date            `json:"startDate"`
		EndDate           *Date           `json:"endDate"`
		LastGeneratedDate *Date           `json:"lastGeneratedDate"`
		Active            bool            `json:"active"`
	}

	// GenerationResult is the backend reply to a generate call.
	GenerationResult struct {
		Success bool   `json:"success"`
		Count   int    `json:"count"`
		Message string `json:"message"`
	}
)

var (
	ErrMissingFields  = errors.New("Please fill in all fields")
	ErrInvalidAmount  = errors.New("Amount must be a positive number")
	ErrInvalidFreq    = errors.New("Frequency must be MONTHLY or YEARLY")
	ErrInvalidEndDate = errors.New("End date must not be before start date")
)

// CategoryTypes lists the selectable category types in display order.
func CategoryTypes() []CategoryType {
	return []CategoryType{Mandatory, Leisure, Investments}
}

// BadgeClass maps a category type to its badge style.
func (t CategoryType) BadgeClass() string {
	switch t {
	case Mandatory:
		return "badge-danger"
	case Leisure:
		return "badge-info"
	default:
		return "badge-primary"
	}
}

// ParseFrequency accepts the two supported recurrence frequencies, case-insensitively.
// An empty value defaults to Monthly.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(s))) {
	case "", Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", ErrInvalidFreq
	}
}

// CategoryNames indexes categories by id.
func CategoryNames(cats []Category) map[int64]string {
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}

// CategoryName resolves the display name of an expense's category.
func (e Expense) CategoryName(names map[int64]string) string {
	if e.Category != "" {
		return e.Category
	}
	if n, ok := names[e.CategoryID]; ok {
		return n
	}
	return "Unknown"
}
