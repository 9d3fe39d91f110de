package models

import "time"

// TransactionType filters transaction fetches against the ledger API.
type TransactionType string

const (
	TransactionAll        TransactionType = "all"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionDeposit    TransactionType = "deposit"
	TransactionTransfer   TransactionType = "transfer"
)

// Title returns the type capitalized for display ("withdrawal" -> "Withdrawal").
func (t TransactionType) Title() string {
	s := string(t)
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// AccountType filters account fetches against the ledger API.
type AccountType string

const (
	AccountAll         AccountType = "all"
	AccountAsset       AccountType = "asset"
	AccountCash        AccountType = "cash"
	AccountExpense     AccountType = "expense"
	AccountRevenue     AccountType = "revenue"
	AccountLiabilities AccountType = "liabilities"
)

// Title returns the type capitalized for display.
func (t AccountType) Title() string {
	s := string(t)
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// Transaction is a flat snapshot of a ledger transaction group, taken from the
// group's first split. Multi-split groups are not fully modeled: only the first
// split's amount, budget and category survive.
type Transaction struct {
	CreatedAt       time.Time
	Type            string
	Amount          float64
	CurrencyCode    string
	Description     string
	SourceName      string
	DestinationName string
	BudgetName      string
	CategoryName    string
}

// Money is an amount together with its currency code.
type Money struct {
	Sum          float64
	CurrencyCode string
}

// Category aggregates what was spent and earned under one category inside the
// window the fetch was issued for. Spent and Earned are nil when the ledger
// reported nothing for the window.
type Category struct {
	Name   string
	Spent  *Money
	Earned *Money
}

// Budget is a budget together with its limit for the fetched window.
//
// Spent is the sum of the budget's transactions inside the window the budget
// was fetched with, not the report's own window. Callers that need both (the
// pacing math does) fetch budgets over the month-to-date window and compute
// the report window's spend separately.
type Budget struct {
	Name              string
	Limit             float64
	LimitStart        time.Time
	LimitEnd          time.Time
	LimitCurrencyCode string
	Spent             float64
}

// Account is an account snapshot with its balance at fetch time.
type Account struct {
	Name           string
	Type           string
	CurrentBalance float64
	CurrencyCode   string
}
