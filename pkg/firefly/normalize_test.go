package firefly

import (
	"encoding/json"
	"testing"
)

func TestNewTransactionDefaults(t *testing.T) {
	attrs := transactionAttributes{
		Transactions: []transactionSplit{{Description: "mystery"}},
	}
	tx := newTransaction(attrs)
	if tx == nil {
		t.Fatal("expected a transaction, got nil")
	}
	if tx.Type != "unknown" {
		t.Errorf("expected type unknown, got %q", tx.Type)
	}
	if tx.CurrencyCode != "N/A" {
		t.Errorf("expected currency N/A, got %q", tx.CurrencyCode)
	}
	if tx.Amount != 0 {
		t.Errorf("expected amount 0, got %.2f", tx.Amount)
	}
}

func TestNewTransactionFirstSplitWins(t *testing.T) {
	attrs := transactionAttributes{
		Transactions: []transactionSplit{
			{Type: "withdrawal", Amount: -10, CurrencyCode: "EUR", Description: "first", BudgetName: "Groceries"},
			{Type: "withdrawal", Amount: -99, CurrencyCode: "USD", Description: "second"},
		},
	}
	tx := newTransaction(attrs)
	if tx.Amount != -10 || tx.Description != "first" || tx.BudgetName != "Groceries" {
		t.Errorf("expected first split values, got %+v", tx)
	}
}

func TestNewTransactionEmptyGroup(t *testing.T) {
	if tx := newTransaction(transactionAttributes{}); tx != nil {
		t.Errorf("expected nil for empty group, got %+v", tx)
	}
}

func TestFlexTypesDecode(t *testing.T) {
	var split transactionSplit
	payload := `{"type": "withdrawal", "amount": "-42.50", "currency_code": "EUR"}`
	if err := json.Unmarshal([]byte(payload), &split); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if split.Amount != -42.5 {
		t.Errorf("expected amount -42.5, got %v", split.Amount)
	}

	var r resource[budgetLimitAttributes]
	payload = `{"id": "7", "attributes": {"budget_id": 3, "amount": null}}`
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if r.ID != 7 {
		t.Errorf("expected id 7, got %d", r.ID)
	}
	if r.Attributes.BudgetID != 3 {
		t.Errorf("expected budget id 3, got %d", r.Attributes.BudgetID)
	}
	if r.Attributes.Amount != 0 {
		t.Errorf("expected null amount to decode as 0, got %v", r.Attributes.Amount)
	}
}

func TestFlexFloatRejectsGarbage(t *testing.T) {
	var f flexFloat
	if err := f.UnmarshalJSON([]byte(`"not-a-number"`)); err == nil {
		t.Error("expected an error for a non-numeric amount")
	}
}
