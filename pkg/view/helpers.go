package view

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is an amount as stored (minor units) plus display forms.
type Money struct {
	Minor    int64  `json:"minor"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

// MoneyFromMinor: 49900 INR -> {Amount: "499.00", Display: "₹499.00"}
func MoneyFromMinor(minor int64, currency string) Money {
	amount := decimal.New(minor, -2).StringFixed(2)
	return Money{
		Minor:    minor,
		Amount:   amount,
		Currency: currency,
		Display:  currencySymbol(currency) + amount,
	}
}

func currencySymbol(code string) string {
	switch code {
	case "INR":
		return "₹"
	case "EUR":
		return "€"
	case "USD":
		return "$"
	case "GBP":
		return "£"
	case "JPY":
		return "¥"
	default:
		return code + " "
	}
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func OptTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Timestamp(*t)
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func PagesFromTotal(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
