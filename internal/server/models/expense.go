package models

import "github.com/shopspring/decimal"

// Expense is a purchase optionally split between the owner and friends.
type Expense struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"user"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	ItemName        string          `json:"itemName"`
	Friends         []string        `json:"friends"`
	AmountPerPerson decimal.Decimal `json:"amountPerPerson"`
	Date            Date            `json:"date"`
}
