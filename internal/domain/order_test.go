package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStageFor(t *testing.T) {
	assert.Equal(t, StagePendingAdvance, StageFor(false, false))
	assert.Equal(t, StageInProgress, StageFor(true, false))
	assert.Equal(t, StagePaidFull, StageFor(true, true))

	// paid_remaining without paid_advance cannot be produced by the
	// lifecycle; the derivation still reduces it deterministically.
	assert.Equal(t, StagePendingAdvance, StageFor(false, true))
}

func TestOrder_Terminal(t *testing.T) {
	for _, status := range []Status{StatusNew, StatusProposalSent, StatusAwaitingPayment,
		StatusInProgress, StatusDelivered, StatusAwaitingRemainingPayment} {
		order := Order{Status: status}
		assert.False(t, order.Terminal(), "status %s should not be terminal", status)
	}

	assert.True(t, (&Order{Status: StatusCompleted}).Terminal())
	assert.True(t, (&Order{Status: StatusCancelled}).Terminal())
}

func TestOrder_Staged(t *testing.T) {
	order := Order{}
	assert.False(t, order.Staged())

	order.AdvanceAmount = decimal.NewNullDecimal(decimal.RequireFromString("150"))
	assert.False(t, order.Staged())

	order.RemainingAmount = decimal.NewNullDecimal(decimal.RequireFromString("349"))
	assert.True(t, order.Staged())
}
