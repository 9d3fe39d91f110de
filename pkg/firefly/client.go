// Package firefly wraps the Firefly III REST API. It exposes one fetch per
// entity kind, walks pagination transparently and converts the raw attribute
// records into the plain types in pkg/models.
//
// Every call degrades silently: transport errors, non-2xx statuses and
// malformed bodies are logged and turn into empty results, never into errors
// surfacing to the caller. Callers must tolerate partial or empty data at
// every call site.
package firefly

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fireflybot/fireflybot/pkg/models"
)

const dateLayout = "2006-01-02"

// Client talks to a single Firefly III instance with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *log.Logger
}

// New creates a client for the given instance. The timeout is applied
// uniformly to every request; there is no retry policy.
func New(apiURL, token string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/") + "/api/v1",
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// get issues one GET request and decodes the body into out. It reports
// whether the call produced usable data; every failure mode is logged and
// collapsed into false.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) bool {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.logger.Warn("building request failed", "path", path, "error", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "path", path, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn("unexpected status", "path", path, "status", resp.StatusCode)
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn("decoding response failed", "path", path, "error", err)
		return false
	}
	return true
}

// collectPages fetches page 1, reads the page count from its metadata and
// walks pages 2..N sequentially. Results keep API return order; duplicate ids
// across pages are dropped. A failed first page yields no data at all, a
// failed later page only loses that page.
func collectPages[T any](fetch func(page int) ([]resource[T], int, bool)) []resource[T] {
	first, totalPages, ok := fetch(1)
	if !ok {
		return nil
	}
	seen := make(map[int]bool, len(first))
	out := make([]resource[T], 0, len(first))
	add := func(rs []resource[T]) {
		for _, r := range rs {
			if seen[int(r.ID)] {
				continue
			}
			seen[int(r.ID)] = true
			out = append(out, r)
		}
	}
	add(first)
	for page := 2; page <= totalPages; page++ {
		next, _, ok := fetch(page)
		if !ok {
			continue
		}
		add(next)
	}
	return out
}

func windowParams(start, end time.Time) url.Values {
	params := url.Values{}
	if !start.IsZero() {
		params.Set("start", start.Format(dateLayout))
	}
	if !end.IsZero() {
		params.Set("end", end.Format(dateLayout))
	}
	return params
}

func (c *Client) fetchAccounts(ctx context.Context, date time.Time, kind models.AccountType) []resource[accountAttributes] {
	return collectPages(func(page int) ([]resource[accountAttributes], int, bool) {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("type", string(kind))
		if !date.IsZero() {
			params.Set("date", date.Format(dateLayout))
		}
		var out listResponse[accountAttributes]
		ok := c.get(ctx, "/accounts", params, &out)
		return out.Data, out.Meta.Pagination.TotalPages, ok
	})
}

func (c *Client) fetchBudgets(ctx context.Context, start, end time.Time) []resource[budgetAttributes] {
	return collectPages(func(page int) ([]resource[budgetAttributes], int, bool) {
		params := windowParams(start, end)
		params.Set("page", strconv.Itoa(page))
		var out listResponse[budgetAttributes]
		ok := c.get(ctx, "/budgets", params, &out)
		return out.Data, out.Meta.Pagination.TotalPages, ok
	})
}

// fetchBudgetLimits returns the budget limits overlapping the window. The
// endpoint is not paginated.
func (c *Client) fetchBudgetLimits(ctx context.Context, start, end time.Time) []resource[budgetLimitAttributes] {
	var out listResponse[budgetLimitAttributes]
	if !c.get(ctx, "/budget-limits", windowParams(start, end), &out) {
		return nil
	}
	return out.Data
}

func (c *Client) fetchBudgetTransactions(ctx context.Context, budgetID int, start, end time.Time, kind models.TransactionType) []resource[transactionAttributes] {
	path := "/budgets/" + strconv.Itoa(budgetID) + "/transactions"
	return collectPages(func(page int) ([]resource[transactionAttributes], int, bool) {
		params := windowParams(start, end)
		params.Set("page", strconv.Itoa(page))
		params.Set("type", string(kind))
		var out listResponse[transactionAttributes]
		ok := c.get(ctx, path, params, &out)
		return out.Data, out.Meta.Pagination.TotalPages, ok
	})
}

func (c *Client) fetchCategories(ctx context.Context) []resource[categoryAttributes] {
	return collectPages(func(page int) ([]resource[categoryAttributes], int, bool) {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		var out listResponse[categoryAttributes]
		ok := c.get(ctx, "/categories", params, &out)
		return out.Data, out.Meta.Pagination.TotalPages, ok
	})
}

func (c *Client) fetchCategoryByID(ctx context.Context, id int, start, end time.Time) (categoryAttributes, bool) {
	var out singleResponse[categoryAttributes]
	path := "/categories/" + strconv.Itoa(id)
	if !c.get(ctx, path, windowParams(start, end), &out) {
		return categoryAttributes{}, false
	}
	return out.Data.Attributes, true
}

func (c *Client) fetchTransactions(ctx context.Context, start, end time.Time, kind models.TransactionType) []resource[transactionAttributes] {
	return collectPages(func(page int) ([]resource[transactionAttributes], int, bool) {
		params := windowParams(start, end)
		params.Set("page", strconv.Itoa(page))
		params.Set("type", string(kind))
		var out listResponse[transactionAttributes]
		ok := c.get(ctx, "/transactions", params, &out)
		return out.Data, out.Meta.Pagination.TotalPages, ok
	})
}

// Accounts returns accounts of the given kind, optionally with balances as of
// date (zero date means "current").
func (c *Client) Accounts(ctx context.Context, date time.Time, kind models.AccountType) []models.Account {
	raw := c.fetchAccounts(ctx, date, kind)
	accounts := make([]models.Account, 0, len(raw))
	for _, r := range raw {
		accounts = append(accounts, newAccount(r.Attributes))
	}
	return accounts
}

// AccountByID returns a single account, or nil when the call failed.
func (c *Client) AccountByID(ctx context.Context, id int, date time.Time) *models.Account {
	params := url.Values{}
	if !date.IsZero() {
		params.Set("date", date.Format(dateLayout))
	}
	var out singleResponse[accountAttributes]
	if !c.get(ctx, "/accounts/"+strconv.Itoa(id), params, &out) {
		return nil
	}
	account := newAccount(out.Data.Attributes)
	return &account
}

// Budgets returns the active budgets for the window, each joined with its
// limit for the window and the sum of its transactions inside the window.
func (c *Client) Budgets(ctx context.Context, start, end time.Time) []models.Budget {
	raw := c.fetchBudgets(ctx, start, end)
	limits := c.fetchBudgetLimits(ctx, start, end)

	budgets := make([]models.Budget, 0, len(raw))
	for _, r := range raw {
		if !r.Attributes.Active {
			continue
		}
		var limit *budgetLimitAttributes
		for i := range limits {
			if int(limits[i].Attributes.BudgetID) == int(r.ID) {
				limit = &limits[i].Attributes
			}
		}
		txs := c.fetchBudgetTransactions(ctx, int(r.ID), start, end, models.TransactionAll)
		attrs := make([]transactionAttributes, 0, len(txs))
		for _, t := range txs {
			attrs = append(attrs, t.Attributes)
		}
		budgets = append(budgets, newBudget(r.Attributes, limit, attrs))
	}
	return budgets
}

// BudgetByID returns a single budget joined with its window limit, or nil
// when the call failed.
func (c *Client) BudgetByID(ctx context.Context, id int, start, end time.Time) *models.Budget {
	var out singleResponse[budgetAttributes]
	if !c.get(ctx, "/budgets/"+strconv.Itoa(id), windowParams(start, end), &out) {
		return nil
	}
	var limit *budgetLimitAttributes
	for _, l := range c.fetchBudgetLimits(ctx, start, end) {
		if int(l.Attributes.BudgetID) == id {
			attr := l.Attributes
			limit = &attr
		}
	}
	txs := c.fetchBudgetTransactions(ctx, id, start, end, models.TransactionAll)
	attrs := make([]transactionAttributes, 0, len(txs))
	for _, t := range txs {
		attrs = append(attrs, t.Attributes)
	}
	budget := newBudget(out.Data.Attributes, limit, attrs)
	return &budget
}

// Categories returns every category with its spent/earned sums aggregated
// over the window.
func (c *Client) Categories(ctx context.Context, start, end time.Time) []models.Category {
	raw := c.fetchCategories(ctx)
	categories := make([]models.Category, 0, len(raw))
	for _, r := range raw {
		attrs, ok := c.fetchCategoryByID(ctx, int(r.ID), start, end)
		if !ok {
			continue
		}
		categories = append(categories, newCategory(attrs))
	}
	return categories
}

// CategoryByID returns a single category with window sums, or nil when the
// call failed.
func (c *Client) CategoryByID(ctx context.Context, id int, start, end time.Time) *models.Category {
	attrs, ok := c.fetchCategoryByID(ctx, id, start, end)
	if !ok {
		return nil
	}
	category := newCategory(attrs)
	return &category
}

// Transactions returns the window's transactions of the given kind in API
// return order. Transaction groups with no splits are dropped.
func (c *Client) Transactions(ctx context.Context, start, end time.Time, kind models.TransactionType) []models.Transaction {
	raw := c.fetchTransactions(ctx, start, end, kind)
	transactions := make([]models.Transaction, 0, len(raw))
	for _, r := range raw {
		tx := newTransaction(r.Attributes)
		if tx == nil {
			continue
		}
		transactions = append(transactions, *tx)
	}
	return transactions
}

// TransactionByID returns a single transaction, or nil when the call failed
// or the group has no splits.
func (c *Client) TransactionByID(ctx context.Context, id int, start, end time.Time) *models.Transaction {
	var out singleResponse[transactionAttributes]
	if !c.get(ctx, "/transactions/"+strconv.Itoa(id), windowParams(start, end), &out) {
		return nil
	}
	return newTransaction(out.Data.Attributes)
}
