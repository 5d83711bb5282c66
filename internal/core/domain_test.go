package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-04-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 4 || d.Day() != 5 {
		t.Fatalf("unexpected date: %v", d)
	}

	d, err = ParseDate("2025-04-05T22:10:00Z")
	if err != nil || d.String() != "2025-04-05" {
		t.Fatalf("timestamp parse: got %v err=%v", d, err)
	}

	for _, bad := range []string{"", "2025-13-01", "05/04/2025", "yesterday"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%q expected invalid argument, got %v", bad, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var e struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2025-04-01"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, _ := json.Marshal(e)
	if string(out) != `{"date":"2025-04-01"}` {
		t.Fatalf("marshal = %s", out)
	}
	if err := json.Unmarshal([]byte(`{"date":"not-a-date"}`), &e); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for negative, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 100},
		CategoryID:  "cat_food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{}, Description: "a", Amount: Money{Cents: 1}, CategoryID: "c"},
		{Date: NewDate(2025, 1, 1), Description: "", Amount: Money{Cents: 1}, CategoryID: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 0}, CategoryID: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, CategoryID: " "},
	}
	for i, e := range bads {
		if err := e.Validate(); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d expected invalid argument, got %v", i, err)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{CategoryID: "cat_housing", Amount: Money{Cents: 130000}, Period: Monthly}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Budget{
		{CategoryID: "", Amount: Money{Cents: 1}, Period: Monthly},
		{CategoryID: "c", Amount: Money{Cents: 0}, Period: Monthly},
		{CategoryID: "c", Amount: Money{Cents: 1}, Period: "daily"},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod(" Monthly "); err != nil || p != Monthly {
		t.Fatalf("got %q err=%v", p, err)
	}
	_, err := ParsePeriod("fortnightly")
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if !strings.Contains(err.Error(), "[weekly monthly yearly]") {
		t.Errorf("error should list the supported periods: %v", err)
	}
}

func TestCategoryNormalize(t *testing.T) {
	c := Category{Name: "  Pets "}.Normalize()
	if c.Name != "Pets" || c.Color != DefaultColor || c.Icon != DefaultIcon {
		t.Fatalf("unexpected normalized category: %+v", c)
	}
	if err := (Category{Name: " "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestDefaultCategoriesIsACopy(t *testing.T) {
	a := DefaultCategories()
	if len(a) != 8 {
		t.Fatalf("expected 8 default categories, got %d", len(a))
	}
	a[0].Name = "changed"
	if DefaultCategories()[0].Name != "Housing" {
		t.Fatalf("DefaultCategories must return a fresh copy")
	}
}
