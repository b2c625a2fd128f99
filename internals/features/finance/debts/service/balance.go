// file: internals/features/finance/debts/service/balance.go
package service

import "github.com/shopspring/decimal"

// Allocated sums allocation amounts.
func Allocated(allocations []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range allocations {
		sum = sum.Add(a)
	}
	return sum
}

// Outstanding returns max(0, principal + penalty - sum(allocations)).
// Historical over-payment clamps to zero instead of failing.
func Outstanding(principal, penalty decimal.Decimal, allocations []decimal.Decimal) decimal.Decimal {
	out := principal.Add(penalty).Sub(Allocated(allocations))
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func IsFullyPaid(principal, penalty decimal.Decimal, allocations []decimal.Decimal) bool {
	return Outstanding(principal, penalty, allocations).IsZero()
}
