// Package payment computes the two-stage advance/remaining split.
package payment

import (
	"github.com/shopspring/decimal"

	"vendly/internal/domain"
)

// advanceRate is the portion of an order's total payable before work begins.
var advanceRate = decimal.NewFromFloat(0.30)

// Staging is the computed split and the stage summary for a total and a
// payment history.
type Staging struct {
	Advance   decimal.Decimal
	Remaining decimal.Decimal
	Stage     domain.PaymentStage
}

// Stage splits total into advance and remaining portions and classifies the
// payment stage from the settlement booleans. The advance is total*0.30
// rounded half-up to whole currency units; the remaining portion is the
// exact complement, so advance+remaining always equals total regardless of
// rounding direction.
//
// Callers must not re-stage an order whose amounts are already populated;
// the split is computed once, at order creation or during migration.
func Stage(total decimal.Decimal, paidAdvance, paidRemaining bool) Staging {
	advance := total.Mul(advanceRate).Round(0)
	return Staging{
		Advance:   advance,
		Remaining: total.Sub(advance),
		Stage:     domain.StageFor(paidAdvance, paidRemaining),
	}
}
