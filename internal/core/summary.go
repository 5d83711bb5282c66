package core

import "github.com/shopspring/decimal"

const (
	LevelOK      UtilizationLevel = "ok"
	LevelWarning UtilizationLevel = "warning"
	LevelDanger  UtilizationLevel = "danger"
)

type UtilizationLevel string

// CategorySpending is the share of total spending attributed to one category.
type CategorySpending struct {
	CategoryID string          `json:"categoryId"`
	Amount     Money           `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// MonthlySpending is the spending total of one calendar month.
type MonthlySpending struct {
	Month  string `json:"month"` // Jan..Dec
	Amount Money  `json:"amount"`
}

// DailySpending is the spending total of one calendar day.
type DailySpending struct {
	Date   Date  `json:"date"`
	Amount Money `json:"amount"`
	Count  int   `json:"count"`
}

// Utilization reports how much of a budget has been spent.
// Percentage is capped at 100 for display; RawPercentage is not.
type Utilization struct {
	Spent         Money            `json:"spent"`
	Limit         Money            `json:"limit"`
	Percentage    decimal.Decimal  `json:"percentage"`
	RawPercentage decimal.Decimal  `json:"rawPercentage"`
	Remaining     Money            `json:"remaining"`
	Overage       Money            `json:"overage"`
	IsOverBudget  bool             `json:"isOverBudget"`
	Level         UtilizationLevel `json:"level"`
}

// LevelFor maps a percentage to the warning bands used by the dashboard:
// above 90 is danger, above 75 is warning.
func LevelFor(pct decimal.Decimal) UtilizationLevel {
	switch {
	case pct.GreaterThan(decimal.NewFromInt(90)):
		return LevelDanger
	case pct.GreaterThan(decimal.NewFromInt(75)):
		return LevelWarning
	default:
		return LevelOK
	}
}
