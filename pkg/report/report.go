// Package report is the aggregation engine: it pulls ledger entities for a
// date window, computes summary sums, budget pacing and category deltas, and
// emits an ordered list of abstract sections for rendering.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fireflybot/fireflybot/pkg/models"
)

// Kind selects one of the three report compositions.
type Kind string

const (
	Daily    Kind = "daily"
	Monthly  Kind = "monthly"
	Periodic Kind = "periodic"
)

// Ledger is the read-only facade the engine aggregates over. *firefly.Client
// satisfies it; tests stub it.
type Ledger interface {
	Transactions(ctx context.Context, start, end time.Time, kind models.TransactionType) []models.Transaction
	Budgets(ctx context.Context, start, end time.Time) []models.Budget
	Categories(ctx context.Context, start, end time.Time) []models.Category
}

// Options carries the per-kind exclusion lists.
type Options struct {
	ExcludeBudgets    []string
	ExcludeCategories []string
}

// Report is one report to generate: a kind, a display header and the window
// it aggregates over.
type Report struct {
	Kind   Kind
	Header string
	Start  time.Time
	End    time.Time
}

// NewDaily covers the given day in full.
func NewDaily(day time.Time) Report {
	return Report{
		Kind:   Daily,
		Header: "Daily report: " + day.Format("2006-01-02"),
		Start:  dayStart(day),
		End:    dayEnd(day),
	}
}

// NewMonthly covers the given day's month from its first day through the day
// itself.
func NewMonthly(day time.Time) Report {
	return Report{
		Kind:   Monthly,
		Header: "Monthly report: " + day.Format("2006-01"),
		Start:  dayStart(day.AddDate(0, 0, -(day.Day() - 1))),
		End:    dayEnd(day),
	}
}

// NewPeriodic covers the period of `days` days ending at the given day.
func NewPeriodic(day time.Time, days int) Report {
	start := dayStart(day.AddDate(0, 0, -(days - 1)))
	end := dayEnd(day)
	return Report{
		Kind:   Periodic,
		Header: fmt.Sprintf("Last %d days report: %s %d-%d", days, start.Format("2006-01"), start.Day(), end.Day()),
		Start:  start,
		End:    end,
	}
}

// Generate runs the composition for the report's kind and returns the ordered
// section list. It is a pure function of the window and the ledger contents:
// identical inputs produce identical output.
func (r Report) Generate(ctx context.Context, ledger Ledger, opts Options) []Section {
	g := &generator{ledger: ledger, start: r.Start, end: r.End}
	sections := []Section{Header("📋 " + r.Header)}

	switch r.Kind {
	case Daily:
		sections = append(sections, g.budgets(ctx, budgetAccumulating, opts.ExcludeBudgets)...)
		sections = append(sections, Blank())
		for _, kind := range []models.TransactionType{models.TransactionWithdrawal, models.TransactionDeposit, models.TransactionTransfer} {
			block := g.transactions(ctx, kind)
			if len(block) == 0 {
				continue
			}
			sections = append(sections, Header("🟢 Transactions: "+strings.ToUpper(string(kind))))
			sections = append(sections, block...)
		}
	case Monthly:
		sections = append(sections, g.summary(ctx, true, false)...)
		sections = append(sections, Blank())
		sections = append(sections, g.budgets(ctx, budgetSimple, opts.ExcludeBudgets)...)
		sections = append(sections, Blank())
		sections = append(sections, g.categories(ctx, opts.ExcludeCategories)...)
	case Periodic:
		sections = append(sections, g.budgets(ctx, budgetFlat, opts.ExcludeBudgets)...)
		sections = append(sections, Blank())
		sections = append(sections, g.categories(ctx, opts.ExcludeCategories)...)
	}
	return sections
}

type budgetMode int

const (
	budgetSimple budgetMode = iota
	budgetAccumulating
	budgetFlat
)

type generator struct {
	ledger Ledger
	start  time.Time
	end    time.Time
}

// summary emits one key-value line per transaction kind (withdrawal, then
// deposit) with the window's signed sum. withDivision adds per-source-account
// breakdown lines. withMonth appends a second sum in parentheses; it still
// queries the report window, not the calendar month.
// TODO: make the month addend query the full month instead of the window.
func (g *generator) summary(ctx context.Context, withDivision, withMonth bool) []Section {
	var sections []Section
	for _, kind := range []models.TransactionType{models.TransactionWithdrawal, models.TransactionDeposit} {
		txs := g.ledger.Transactions(ctx, g.start, g.end, kind)
		var sum float64
		for _, tx := range txs {
			sum += tx.Amount
		}
		value := fmt.Sprintf("%.2f", sum)

		var division []Section
		if withDivision {
			totals := make(map[string]float64)
			var order []string
			for _, tx := range txs {
				name := tx.SourceName
				if name == "" {
					name = "None"
				}
				if _, ok := totals[name]; !ok {
					order = append(order, name)
				}
				totals[name] += tx.Amount
			}
			for _, name := range order {
				division = append(division, List(fmt.Sprintf("%s: %.2f", name, totals[name])))
			}
		}

		if withMonth {
			monthTxs := g.ledger.Transactions(ctx, g.start, g.end, kind)
			var monthSum float64
			for _, tx := range monthTxs {
				monthSum += tx.Amount
			}
			value += fmt.Sprintf(" (%.2f)", monthSum)
		}

		sections = append(sections, KeyValue(kind.Title(), value))
		sections = append(sections, division...)
	}
	return sections
}

// budgets emits one status line per active, non-excluded budget. Budgets are
// always fetched over [first day of the window's month, window end], so
// Budget.Spent is the month-to-date sum; the window's own spend is computed
// separately from the window's transactions when pacing is on.
func (g *generator) budgets(ctx context.Context, mode budgetMode, exclude []string) []Section {
	sections := []Section{Header("🟢 Budgets: 🟢")}
	budgets := g.ledger.Budgets(ctx, monthStart(g.start), g.end)

	var windowTxs []models.Transaction
	if mode != budgetSimple {
		windowTxs = g.ledger.Transactions(ctx, g.start, g.end, models.TransactionAll)
	}

	for _, budget := range budgets {
		if contains(exclude, budget.Name) {
			continue
		}
		if mode == budgetSimple {
			sections = append(sections, simpleBudgetLine(budget))
			continue
		}
		sections = append(sections, g.pacingBudgetLine(budget, mode, windowTxs))
	}
	return sections
}

func simpleBudgetLine(budget models.Budget) Section {
	value := fmt.Sprintf("%.2f / %.2f", budget.Spent, budget.Limit)
	if budget.Limit != 0 {
		value += fmt.Sprintf(" (%d%%)", int(budget.Spent/budget.Limit*100))
	}
	mark := "❌"
	if budget.Limit != 0 && budget.Spent <= budget.Limit {
		mark = "✅"
	}
	if budget.Limit == 0 && budget.Spent == 0 {
		mark = "✅"
	}
	return KeyValue(mark+" "+budget.Name, value)
}

// pacingBudgetLine compares the window's own spend against a pro-rated share
// of the monthly limit, and reports the month-wide remaining balance.
func (g *generator) pacingBudgetLine(budget models.Budget, mode budgetMode, windowTxs []models.Transaction) Section {
	var windowSpent float64
	for _, tx := range windowTxs {
		if tx.BudgetName == budget.Name {
			windowSpent += tx.Amount
		}
	}

	var target float64
	switch mode {
	case budgetAccumulating:
		// Remaining budget spread over the remaining days of the month,
		// counting the window's last day itself.
		remaining := daysInMonth(g.end) - g.end.Day() + 1
		target = (budget.Limit - budget.Spent) / float64(remaining)
	case budgetFlat:
		days := int(g.end.Sub(g.start).Hours()/24) + 1
		target = budget.Limit * float64(days) / float64(daysInMonth(g.start))
	}
	if target < 0 {
		target = 0
	}

	mark := "❌"
	if budget.Limit != 0 && windowSpent <= target {
		mark = "✅"
	}
	if budget.Limit == 0 && windowSpent == 0 {
		mark = "✅"
	}

	balance := budget.Limit - budget.Spent
	var available string
	if balance >= 0 {
		available = fmt.Sprintf("🟢 Available %.2f", balance)
		if budget.Limit != 0 {
			if percent := int(balance / budget.Limit * 100); percent != 0 {
				available += fmt.Sprintf(" (%d%%)", percent)
			}
		}
	} else {
		available = fmt.Sprintf("🔴 Overrun %.2f", -balance)
	}

	value := fmt.Sprintf("%.2f / %.2f (%s)", windowSpent, target, available)
	return KeyValue(mark+" "+budget.Name, value)
}

// categories emits one line per non-excluded category with in-window
// activity, sorted ascending by spent amount, each tagged with the delta
// against the immediately preceding window of identical length. The delta is
// signed: spent sums are negative, so more spending means a smaller delta and
// the decrease marker.
func (g *generator) categories(ctx context.Context, exclude []string) []Section {
	current := g.ledger.Categories(ctx, g.start, g.end)

	length := g.end.Sub(g.start)
	prevEnd := g.start.Add(-time.Second)
	prevStart := g.start.Add(-(length + time.Second))
	previous := g.ledger.Categories(ctx, prevStart, prevEnd)

	prevSpent := make(map[string]float64, len(previous))
	for _, c := range previous {
		if c.Spent != nil {
			prevSpent[c.Name] = c.Spent.Sum
		}
	}

	sort.SliceStable(current, func(i, j int) bool {
		return spentSum(current[i]) < spentSum(current[j])
	})

	sections := []Section{Header("🟢 Categories: 🟢")}
	for _, c := range current {
		if contains(exclude, c.Name) {
			continue
		}
		spent := spentSum(c)
		var earned float64
		if c.Earned != nil {
			earned = c.Earned.Sum
		}
		if spent == 0 && earned == 0 {
			continue
		}
		prev, ok := prevSpent[c.Name]
		if !ok {
			prev = spent
		}
		delta := spent - prev
		marker := "🔻"
		if delta > 0 {
			marker = "🔺"
		}
		sections = append(sections, KeyValue(c.Name, fmt.Sprintf("%.2f / +%.2f (%s %.2f)", spent, earned, marker, delta)))
	}
	return sections
}

// transactions emits one line per in-window transaction of the given kind,
// preserving API return order.
func (g *generator) transactions(ctx context.Context, kind models.TransactionType) []Section {
	txs := g.ledger.Transactions(ctx, g.start, g.end, kind)
	sections := make([]Section, 0, len(txs))
	for _, tx := range txs {
		label := fmt.Sprintf("[%s] %s (%s)", tx.SourceName, tx.CategoryName, tx.BudgetName)
		value := fmt.Sprintf("%.2f (%s)", tx.Amount, tx.Description)
		sections = append(sections, KeyValue(label, value))
	}
	return sections
}

func spentSum(c models.Category) float64 {
	if c.Spent == nil {
		return 0
	}
	return c.Spent.Sum
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
