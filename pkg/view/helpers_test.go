package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMoneyFromMinor(t *testing.T) {
	m := MoneyFromMinor(49900, "INR")
	assert.Equal(t, "499.00", m.Amount)
	assert.Equal(t, "₹499.00", m.Display)

	assert.Equal(t, "0.05", MoneyFromMinor(5, "USD").Amount)
	assert.Equal(t, "CHF 12.30", MoneyFromMinor(1230, "CHF").Display)
}

func TestPagesFromTotal(t *testing.T) {
	assert.Equal(t, 1, PagesFromTotal(0, 20))
	assert.Equal(t, 1, PagesFromTotal(20, 20))
	assert.Equal(t, 2, PagesFromTotal(21, 20))
}

func TestOptTimestamp(t *testing.T) {
	assert.Nil(t, OptTimestamp(nil))
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	assert.Equal(t, "2024-05-01T04:30:00Z", *OptTimestamp(&ts))
}
