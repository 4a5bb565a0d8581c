package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"vendly/internal/domain"
)

func TestStage_Split(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		advance   string
		remaining string
	}{
		{"even split", "800", "240", "560"},
		{"rounds half up", "499", "150", "349"},
		{"exact thirds", "100", "30", "70"},
		{"small total", "1", "0", "1"},
		{"fractional total", "100.50", "30", "70.50"},
		{"zero", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			staging := Stage(total, false, false)

			assert.Equal(t, tt.advance, staging.Advance.String())
			assert.Equal(t, tt.remaining, staging.Remaining.String())
		})
	}
}

func TestStage_SumInvariant(t *testing.T) {
	totals := []string{"0.01", "1", "7.77", "99.99", "100", "499", "500", "123456.78", "999999.99"}

	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		staging := Stage(total, false, false)

		assert.True(t, staging.Advance.Add(staging.Remaining).Equal(total),
			"advance %s + remaining %s should equal total %s",
			staging.Advance, staging.Remaining, total)
	}
}

func TestStage_Classification(t *testing.T) {
	total := decimal.RequireFromString("500")

	assert.Equal(t, domain.StagePendingAdvance, Stage(total, false, false).Stage)
	assert.Equal(t, domain.StageInProgress, Stage(total, true, false).Stage)
	assert.Equal(t, domain.StagePaidFull, Stage(total, true, true).Stage)
}

func TestStage_Idempotent(t *testing.T) {
	total := decimal.RequireFromString("499")

	first := Stage(total, false, false)
	second := Stage(total, true, false)

	// Repeated invocation never changes the split for the same total.
	assert.True(t, first.Advance.Equal(second.Advance))
	assert.True(t, first.Remaining.Equal(second.Remaining))
}
