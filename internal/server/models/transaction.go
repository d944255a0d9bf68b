package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category string

const (
	CategoryMonthly  Category = "Monthly Expense"
	CategoryHouse    Category = "House Expense"
	CategoryFriends  Category = "Friends Expense"
	CategoryPersonal Category = "Personal Expense"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMonthly, CategoryHouse, CategoryFriends, CategoryPersonal:
		return true
	}
	return false
}

type Transaction struct {
	ID          string          `json:"_id"`
	UserID      string          `json:"user"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"-"`
}

// TransactionSnapshot is the field set captured by the change log.
type TransactionSnapshot struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
}

func (t *Transaction) Snapshot() TransactionSnapshot {
	return TransactionSnapshot{
		Name:        t.Name,
		Price:       t.Price,
		Date:        t.Date,
		Description: t.Description,
		Category:    t.Category,
	}
}

// Equal compares snapshots by value; prices compare numerically.
func (s TransactionSnapshot) Equal(o TransactionSnapshot) bool {
	return s.Name == o.Name &&
		s.Price.Equal(o.Price) &&
		s.Date.Equal(o.Date.Time) &&
		s.Description == o.Description &&
		s.Category == o.Category
}

// TransactionChange is the payload of an UPDATED log entry.
type TransactionChange struct {
	Before TransactionSnapshot `json:"before"`
	After  TransactionSnapshot `json:"after"`
}

// MonthlySummary is one row of the per-month aggregate. Month is 1-12.
type MonthlySummary struct {
	Month    int             `json:"month"`
	Category Category        `json:"category"`
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
}
