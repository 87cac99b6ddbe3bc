package events

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places every price and total carries.
const MoneyScale = 2

// Money pins d to MoneyScale places. JSON drops trailing zeros, so an amount
// decoded from a cache entry or a message has to be re-scaled before it is
// compared or returned.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// NormalizeItems returns a copy of items with every price pinned to
// MoneyScale. A nil slice stays nil.
func NormalizeItems(items []OrderItem) []OrderItem {
	if items == nil {
		return nil
	}
	out := make([]OrderItem, len(items))
	for i, it := range items {
		it.Price = Money(it.Price)
		out[i] = it
	}
	return out
}
