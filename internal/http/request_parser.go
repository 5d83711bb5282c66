// This file implements utilities for parsing and validating HTTP request data.
// Record bodies arrive as JSON or form-encoded data; query parameters carry
// the reference dates and windows of the read endpoints.

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"glance/internal/aggregate"
	"glance/internal/core"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// current date as defaults. Unparseable values fall back to the default.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}

	return params
}

// ParseRefDate reads the "date" query parameter, defaulting to today.
func ParseRefDate(query url.Values, now time.Time) (core.Date, error) {
	v := strings.TrimSpace(query.Get("date"))
	if v == "" {
		return core.DateOf(now), nil
	}
	return core.ParseDate(v)
}

// ParseWindowParams reads "period" and "months". A "last" window without
// months uses defaultMonths.
func ParseWindowParams(query url.Values, defaultMonths int) (aggregate.Window, error) {
	kind := strings.ToLower(strings.TrimSpace(query.Get("period")))
	months := defaultMonths
	if v := strings.TrimSpace(query.Get("months")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return aggregate.Window{}, fmt.Errorf("%w: months must be a number", core.ErrInvalidArgument)
		}
		months = n
	}
	return aggregate.ParseWindow(kind, months)
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body larger than %d bytes", maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key is present in the body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseAmount accepts "12.50", "12,50" or a JSON number.
func parseAmount(p *RequestBodyParser) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseExpense builds an expense from the body. A missing date means today.
func parseExpense(p *RequestBodyParser, now time.Time) (core.Expense, error) {
	amount, err := parseAmount(p)
	if err != nil {
		return core.Expense{}, err
	}

	date := core.DateOf(now)
	if v := p.Get("date"); v != "" {
		if date, err = core.ParseDate(v); err != nil {
			return core.Expense{}, err
		}
	}

	return core.Expense{
		Amount:      amount,
		Description: p.Get("description"),
		Date:        date,
		CategoryID:  p.Get("categoryId"),
	}, nil
}

// parseBudget builds a budget from the body. The period defaults to monthly.
func parseBudget(p *RequestBodyParser) (core.Budget, error) {
	amount, err := parseAmount(p)
	if err != nil {
		return core.Budget{}, err
	}

	period := core.Monthly
	if v := p.Get("period"); v != "" {
		if period, err = core.ParsePeriod(v); err != nil {
			return core.Budget{}, err
		}
	}

	return core.Budget{
		CategoryID: p.Get("categoryId"),
		Amount:     amount,
		Period:     period,
	}, nil
}

func parseCategory(p *RequestBodyParser) core.Category {
	return core.Category{
		Name:  p.Get("name"),
		Color: p.Get("color"),
		Icon:  p.Get("icon"),
	}
}
