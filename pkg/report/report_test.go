package report

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fireflybot/fireflybot/pkg/models"
)

// stubLedger serves fixed data. Categories are window-sensitive so the delta
// primitive can see a different preceding period.
type stubLedger struct {
	txs         map[models.TransactionType][]models.Transaction
	budgets     []models.Budget
	current     []models.Category
	previous    []models.Category
	currentFrom time.Time
}

func (s *stubLedger) Transactions(_ context.Context, _, _ time.Time, kind models.TransactionType) []models.Transaction {
	if kind == models.TransactionAll {
		var all []models.Transaction
		for _, k := range []models.TransactionType{models.TransactionWithdrawal, models.TransactionDeposit, models.TransactionTransfer} {
			all = append(all, s.txs[k]...)
		}
		return all
	}
	return s.txs[kind]
}

func (s *stubLedger) Budgets(_ context.Context, _, _ time.Time) []models.Budget {
	return s.budgets
}

func (s *stubLedger) Categories(_ context.Context, start, _ time.Time) []models.Category {
	if !s.currentFrom.IsZero() && start.Before(s.currentFrom) {
		return s.previous
	}
	return s.current
}

func findByLabelSuffix(t *testing.T, sections []Section, suffix string) Section {
	t.Helper()
	for _, s := range sections {
		if s.Kind == SectionKeyValue && strings.HasSuffix(s.Label, suffix) {
			return s
		}
	}
	t.Fatalf("no key-value section with label suffix %q in %+v", suffix, sections)
	return Section{}
}

func countHeaders(sections []Section, text string) int {
	n := 0
	for _, s := range sections {
		if s.Kind == SectionHeader && s.Value == text {
			n++
		}
	}
	return n
}

func TestFlatPacingTarget(t *testing.T) {
	// Limit 300, 31-day month, 5-day window: target = 300 * 5/31 = 48.39.
	ledger := &stubLedger{
		budgets: []models.Budget{{Name: "Groceries", Limit: 300}},
	}
	r := NewPeriodic(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), 5)

	sections := r.Generate(context.Background(), ledger, Options{})
	line := findByLabelSuffix(t, sections, "Groceries")
	want := "0.00 / 48.39 (🟢 Available 300.00 (100%))"
	if line.Value != want {
		t.Errorf("expected %q, got %q", want, line.Value)
	}
	if !strings.HasPrefix(line.Label, "✅") {
		t.Errorf("expected a passing mark, got label %q", line.Label)
	}
}

func TestAccumulatingPacingTarget(t *testing.T) {
	// Limit 300, month-to-date spent 290, 6 days remaining from May 26 in a
	// 31-day month: target = (300-290)/6 = 1.67.
	ledger := &stubLedger{
		budgets: []models.Budget{{Name: "Groceries", Limit: 300, Spent: 290}},
	}
	r := NewDaily(time.Date(2026, 5, 26, 0, 0, 0, 0, time.UTC))

	sections := r.Generate(context.Background(), ledger, Options{})
	line := findByLabelSuffix(t, sections, "Groceries")
	want := "0.00 / 1.67 (🟢 Available 10.00 (3%))"
	if line.Value != want {
		t.Errorf("expected %q, got %q", want, line.Value)
	}
}

func TestPacingTargetClampedAtZero(t *testing.T) {
	// Month-to-date spend above the limit: the target floors at 0 and the
	// balance renders as an overrun.
	ledger := &stubLedger{
		budgets: []models.Budget{{Name: "Groceries", Limit: 300, Spent: 350}},
	}
	r := NewDaily(time.Date(2026, 5, 26, 0, 0, 0, 0, time.UTC))

	sections := r.Generate(context.Background(), ledger, Options{})
	line := findByLabelSuffix(t, sections, "Groceries")
	want := "0.00 / 0.00 (🔴 Overrun 50.00)"
	if line.Value != want {
		t.Errorf("expected %q, got %q", want, line.Value)
	}
}

func TestPacingWindowSpendDecidesMark(t *testing.T) {
	ledger := &stubLedger{
		txs: map[models.TransactionType][]models.Transaction{
			models.TransactionWithdrawal: {
				{Amount: 60, BudgetName: "Groceries", Type: "withdrawal"},
			},
		},
		budgets: []models.Budget{{Name: "Groceries", Limit: 300, Spent: 100}},
	}
	r := NewPeriodic(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), 5)

	sections := r.Generate(context.Background(), ledger, Options{})
	line := findByLabelSuffix(t, sections, "Groceries")
	// Window spend 60 exceeds the 48.39 target even though the month still
	// has budget left.
	if !strings.HasPrefix(line.Label, "❌") {
		t.Errorf("expected a failing mark, got label %q", line.Label)
	}
	if !strings.HasPrefix(line.Value, "60.00 / 48.39") {
		t.Errorf("expected window spend against flat target, got %q", line.Value)
	}
}

func TestBudgetWithoutLimitPassesOnlyWhenUntouched(t *testing.T) {
	ledger := &stubLedger{
		budgets: []models.Budget{{Name: "Untracked"}},
	}
	r := NewDaily(time.Date(2026, 5, 26, 0, 0, 0, 0, time.UTC))

	sections := r.Generate(context.Background(), ledger, Options{})
	line := findByLabelSuffix(t, sections, "Untracked")
	if !strings.HasPrefix(line.Label, "✅") {
		t.Errorf("expected a passing mark for an untouched no-limit budget, got %q", line.Label)
	}

	ledger.txs = map[models.TransactionType][]models.Transaction{
		models.TransactionWithdrawal: {{Amount: -5, BudgetName: "Untracked", Type: "withdrawal"}},
	}
	sections = r.Generate(context.Background(), ledger, Options{})
	line = findByLabelSuffix(t, sections, "Untracked")
	if !strings.HasPrefix(line.Label, "❌") {
		t.Errorf("expected a failing mark once a no-limit budget sees spend, got %q", line.Label)
	}
}

func TestSimpleBudgetLine(t *testing.T) {
	ledger := &stubLedger{
		budgets: []models.Budget{
			{Name: "Groceries", Limit: 300, Spent: 290},
			{Name: "Overspent", Limit: 100, Spent: 150},
		},
	}
	r := NewMonthly(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC))

	sections := r.Generate(context.Background(), ledger, Options{})
	groceries := findByLabelSuffix(t, sections, "Groceries")
	if groceries.Value != "290.00 / 300.00 (96%)" {
		t.Errorf("expected simple spent/limit line, got %q", groceries.Value)
	}
	if !strings.HasPrefix(groceries.Label, "✅") {
		t.Errorf("expected a passing mark, got %q", groceries.Label)
	}
	overspent := findByLabelSuffix(t, sections, "Overspent")
	if !strings.HasPrefix(overspent.Label, "❌") {
		t.Errorf("expected a failing mark, got %q", overspent.Label)
	}
}

func TestCategoryDeltaKeepsSign(t *testing.T) {
	// Previous spent -10, current spent -25: delta = -15, tagged as decrease
	// even though the magnitude grew.
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ledger := &stubLedger{
		current: []models.Category{
			{Name: "Food", Spent: &models.Money{Sum: -25, CurrencyCode: "EUR"}},
		},
		previous: []models.Category{
			{Name: "Food", Spent: &models.Money{Sum: -10, CurrencyCode: "EUR"}},
		},
		currentFrom: start,
	}
	r := NewPeriodic(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), 5)

	sections := r.Generate(context.Background(), ledger, Options{})
	line := findByLabelSuffix(t, sections, "Food")
	want := "-25.00 / +0.00 (🔻 -15.00)"
	if line.Value != want {
		t.Errorf("expected %q, got %q", want, line.Value)
	}
}

func TestCategoryDeltaIncreaseMarker(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ledger := &stubLedger{
		current: []models.Category{
			{Name: "Food", Spent: &models.Money{Sum: -10, CurrencyCode: "EUR"}},
		},
		previous: []models.Category{
			{Name: "Food", Spent: &models.Money{Sum: -25, CurrencyCode: "EUR"}},
		},
		currentFrom: start,
	}
	r := NewPeriodic(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), 5)

	sections := r.Generate(context.Background(), ledger, Options{})
	line := findByLabelSuffix(t, sections, "Food")
	if !strings.Contains(line.Value, "🔺 15.00") {
		t.Errorf("expected an increase marker with delta 15, got %q", line.Value)
	}
}

func TestCategoriesSortedAscendingBySpent(t *testing.T) {
	ledger := &stubLedger{
		current: []models.Category{
			{Name: "Small", Spent: &models.Money{Sum: -5}},
			{Name: "Big", Spent: &models.Money{Sum: -100}},
			{Name: "Quiet"},
		},
	}
	r := NewPeriodic(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), 5)

	sections := r.Generate(context.Background(), ledger, Options{})
	var names []string
	for _, s := range sections {
		if s.Kind == SectionKeyValue {
			names = append(names, s.Label)
		}
	}
	// Quiet has no activity and is skipped; Big (-100) sorts before Small (-5).
	if !reflect.DeepEqual(names, []string{"Big", "Small"}) {
		t.Errorf("expected [Big Small], got %v", names)
	}
}

func TestSummarySums(t *testing.T) {
	ledger := &stubLedger{
		txs: map[models.TransactionType][]models.Transaction{
			models.TransactionWithdrawal: {
				{Amount: -10, SourceName: "Checking", Type: "withdrawal"},
				{Amount: -20, SourceName: "Checking", Type: "withdrawal"},
			},
			models.TransactionDeposit: {
				{Amount: 50, SourceName: "Employer", Type: "deposit"},
			},
		},
	}
	r := NewMonthly(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC))

	sections := r.Generate(context.Background(), ledger, Options{})
	withdrawal := findByLabelSuffix(t, sections, "Withdrawal")
	if withdrawal.Value != "-30.00" {
		t.Errorf("expected withdrawal sum -30.00, got %q", withdrawal.Value)
	}
	deposit := findByLabelSuffix(t, sections, "Deposit")
	if deposit.Value != "50.00" {
		t.Errorf("expected deposit sum 50.00, got %q", deposit.Value)
	}

	var division []string
	for _, s := range sections {
		if s.Kind == SectionList {
			division = append(division, s.Value)
		}
	}
	if !reflect.DeepEqual(division, []string{"Checking: -30.00", "Employer: 50.00"}) {
		t.Errorf("expected per-account division lines, got %v", division)
	}
}

func TestDailyCompositionSkipsEmptyBlocks(t *testing.T) {
	ledger := &stubLedger{
		txs: map[models.TransactionType][]models.Transaction{
			models.TransactionWithdrawal: {
				{Amount: -12.5, SourceName: "Checking", CategoryName: "Food", BudgetName: "Groceries", Description: "lunch", Type: "withdrawal"},
			},
		},
	}
	r := NewDaily(time.Date(2026, 5, 26, 0, 0, 0, 0, time.UTC))

	sections := r.Generate(context.Background(), ledger, Options{})
	if countHeaders(sections, "🟢 Transactions: WITHDRAWAL") != 1 {
		t.Error("expected exactly one withdrawal block header")
	}
	if countHeaders(sections, "🟢 Transactions: DEPOSIT") != 0 {
		t.Error("expected no deposit block header for an empty block")
	}
	if countHeaders(sections, "🟢 Transactions: TRANSFER") != 0 {
		t.Error("expected no transfer block header for an empty block")
	}

	line := findByLabelSuffix(t, sections, "[Checking] Food (Groceries)")
	if line.Value != "-12.50 (lunch)" {
		t.Errorf("expected transaction line value, got %q", line.Value)
	}
}

func TestExclusions(t *testing.T) {
	ledger := &stubLedger{
		budgets: []models.Budget{
			{Name: "Groceries", Limit: 300},
			{Name: "Vacation", Limit: 1000},
		},
		current: []models.Category{
			{Name: "Food", Spent: &models.Money{Sum: -5}},
			{Name: "Internal", Spent: &models.Money{Sum: -5}},
		},
	}
	r := NewPeriodic(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), 5)

	sections := r.Generate(context.Background(), ledger, Options{
		ExcludeBudgets:    []string{"Vacation"},
		ExcludeCategories: []string{"Internal"},
	})
	for _, s := range sections {
		if strings.Contains(s.Label, "Vacation") {
			t.Error("excluded budget rendered")
		}
		if strings.Contains(s.Label, "Internal") {
			t.Error("excluded category rendered")
		}
	}
}

func TestEmptyLedgerStillRenders(t *testing.T) {
	ledger := &stubLedger{}
	for _, r := range []Report{
		NewDaily(time.Date(2026, 5, 26, 0, 0, 0, 0, time.UTC)),
		NewMonthly(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)),
		NewPeriodic(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), 5),
	} {
		sections := r.Generate(context.Background(), ledger, Options{})
		if len(sections) == 0 {
			t.Errorf("%s report rendered no sections", r.Kind)
		}
		if sections[0].Kind != SectionHeader || !strings.HasPrefix(sections[0].Value, "📋 ") {
			t.Errorf("%s report missing header section, got %+v", r.Kind, sections[0])
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	ledger := &stubLedger{
		txs: map[models.TransactionType][]models.Transaction{
			models.TransactionWithdrawal: {
				{Amount: -10, SourceName: "Checking", BudgetName: "Groceries", Type: "withdrawal"},
			},
		},
		budgets: []models.Budget{{Name: "Groceries", Limit: 300, Spent: 100}},
		current: []models.Category{{Name: "Food", Spent: &models.Money{Sum: -10}}},
	}
	r := NewMonthly(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC))

	first := r.Generate(context.Background(), ledger, Options{})
	second := r.Generate(context.Background(), ledger, Options{})
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical section output for identical inputs")
	}
}
