package firefly

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The ledger API wraps every payload in the same envelope:
//
//	{"data": [...], "meta": {"pagination": {"total_pages": N, ...}}}
//
// Ids and monetary amounts arrive as JSON strings, so the attribute structs
// below decode them through flexInt/flexFloat instead of the native kinds.

type listResponse[T any] struct {
	Data []resource[T] `json:"data"`
	Meta metadata      `json:"meta"`
}

type singleResponse[T any] struct {
	Data resource[T] `json:"data"`
}

type resource[T any] struct {
	ID         flexInt `json:"id"`
	Attributes T       `json:"attributes"`
}

type metadata struct {
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Total       int `json:"total"`
	Count       int `json:"count"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// flexFloat decodes a float that the API may encode as a number, a quoted
// string, null or an empty string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("firefly: invalid amount %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// flexInt decodes an id that the API may encode as a number or a quoted string.
type flexInt int

func (i *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*i = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*i = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("firefly: invalid id %q: %w", s, err)
	}
	*i = flexInt(v)
	return nil
}

type accountAttributes struct {
	CreatedAt      time.Time `json:"created_at"`
	Active         bool      `json:"active"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	CurrencyCode   string    `json:"currency_code"`
	CurrentBalance flexFloat `json:"current_balance"`
}

type budgetAttributes struct {
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
}

type budgetLimitAttributes struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	CurrencyCode string    `json:"currency_code"`
	BudgetID     flexInt   `json:"budget_id"`
	Period       string    `json:"period"`
	Amount       flexFloat `json:"amount"`
	Spent        flexFloat `json:"spent"`
}

type categoryOperation struct {
	Sum          flexFloat `json:"sum"`
	CurrencyCode string    `json:"currency_code"`
}

type categoryAttributes struct {
	Name   string              `json:"name"`
	Spent  []categoryOperation `json:"spent"`
	Earned []categoryOperation `json:"earned"`
}

type transactionSplit struct {
	Type            string    `json:"type"`
	Date            time.Time `json:"date"`
	CurrencyCode    string    `json:"currency_code"`
	Amount          flexFloat `json:"amount"`
	Description     string    `json:"description"`
	SourceName      string    `json:"source_name"`
	DestinationName string    `json:"destination_name"`
	BudgetName      string    `json:"budget_name"`
	CategoryName    string    `json:"category_name"`
}

type transactionAttributes struct {
	CreatedAt    time.Time          `json:"created_at"`
	GroupTitle   string             `json:"group_title"`
	Transactions []transactionSplit `json:"transactions"`
}
