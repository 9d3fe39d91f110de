package firefly

import (
	"github.com/fireflybot/fireflybot/pkg/models"
)

// Conversions from raw API attributes to the plain types in pkg/models.
// Missing fields take tolerant defaults (amount 0, currency "N/A", type
// "unknown") so one sloppy record never sinks a whole report.

const (
	defaultCurrency = "N/A"
	defaultType     = "unknown"
)

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// newTransaction flattens a transaction group into its first split. Groups
// with no splits yield nil.
func newTransaction(attrs transactionAttributes) *models.Transaction {
	if len(attrs.Transactions) == 0 {
		return nil
	}
	split := attrs.Transactions[0]
	return &models.Transaction{
		CreatedAt:       attrs.CreatedAt,
		Type:            orDefault(split.Type, defaultType),
		Amount:          float64(split.Amount),
		CurrencyCode:    orDefault(split.CurrencyCode, defaultCurrency),
		Description:     split.Description,
		SourceName:      split.SourceName,
		DestinationName: split.DestinationName,
		BudgetName:      split.BudgetName,
		CategoryName:    split.CategoryName,
	}
}

func newMoney(op categoryOperation) *models.Money {
	return &models.Money{
		Sum:          float64(op.Sum),
		CurrencyCode: orDefault(op.CurrencyCode, defaultCurrency),
	}
}

// newCategory keeps the first spent/earned aggregate the API reports for the
// window; an empty aggregate list means the category saw nothing and stays nil.
func newCategory(attrs categoryAttributes) models.Category {
	category := models.Category{Name: attrs.Name}
	if len(attrs.Spent) > 0 {
		category.Spent = newMoney(attrs.Spent[0])
	}
	if len(attrs.Earned) > 0 {
		category.Earned = newMoney(attrs.Earned[0])
	}
	return category
}

// newBudget joins a budget with its window limit (may be nil) and sums the
// window's transactions into Spent, first split per group.
func newBudget(attrs budgetAttributes, limit *budgetLimitAttributes, txs []transactionAttributes) models.Budget {
	budget := models.Budget{
		Name:              attrs.Name,
		LimitCurrencyCode: defaultCurrency,
	}
	if limit != nil {
		budget.Limit = float64(limit.Amount)
		budget.LimitStart = limit.Start
		budget.LimitEnd = limit.End
		budget.LimitCurrencyCode = orDefault(limit.CurrencyCode, defaultCurrency)
	}
	for _, tx := range txs {
		if len(tx.Transactions) == 0 {
			continue
		}
		budget.Spent += float64(tx.Transactions[0].Amount)
	}
	return budget
}

func newAccount(attrs accountAttributes) models.Account {
	return models.Account{
		Name:           attrs.Name,
		Type:           orDefault(attrs.Type, defaultType),
		CurrentBalance: float64(attrs.CurrentBalance),
		CurrencyCode:   orDefault(attrs.CurrencyCode, defaultCurrency),
	}
}
