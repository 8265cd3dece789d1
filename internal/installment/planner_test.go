package installment

import (
	"testing"

	"github.com/fjod/go_bookstore/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPlan_HasTwelveOrderedOptions(t *testing.T) {
	options, err := Plan(dec("100"))
	require.NoError(t, err)
	require.Len(t, options, MaxCount)

	for i, opt := range options {
		assert.Equal(t, i+1, opt.Count)
		if i > 0 {
			assert.True(t, opt.FeeFraction.GreaterThan(options[i-1].FeeFraction), "fee must grow with count")
		}
	}
	assert.True(t, options[11].FeeFraction.Equal(dec("0.55")))
}

func TestPlan_SingleInstallmentHasNoFee(t *testing.T) {
	for _, total := range []string{"0", "95", "123.456", "1999.995"} {
		options, err := Plan(dec(total))
		require.NoError(t, err)

		first := options[0]
		assert.True(t, first.FeeFraction.IsZero())
		assert.True(t, first.TotalWithFee.Equal(money.Round(dec(total))), "total %s", total)
		assert.True(t, first.MonthlyValue.Equal(first.TotalWithFee))
	}
}

func TestPlan_ThreeInstallmentsOnHundred(t *testing.T) {
	options, err := Plan(dec("100"))
	require.NoError(t, err)

	third := options[2]
	assert.True(t, third.FeeFraction.Equal(dec("0.10")))
	assert.True(t, third.TotalWithFee.Equal(dec("110.00")))
	assert.True(t, third.MonthlyValue.Equal(dec("36.67")))
}

func TestPlan_MatchesClosedForm(t *testing.T) {
	total := dec("87.49")
	options, err := Plan(total)
	require.NoError(t, err)

	for _, opt := range options {
		factor := decimal.NewFromInt(1).Add(dec("0.05").Mul(decimal.NewFromInt(int64(opt.Count - 1))))
		want := total.Mul(factor).Round(2)
		assert.True(t, opt.TotalWithFee.Equal(want), "count %d: want %s got %s", opt.Count, want, opt.TotalWithFee)
	}
}

func TestPlan_MonthlyRoundingDriftIsKept(t *testing.T) {
	options, err := Plan(dec("100"))
	require.NoError(t, err)

	third := options[2]
	product := third.MonthlyValue.Mul(decimal.NewFromInt(3))
	assert.True(t, product.Equal(dec("110.01")))
	assert.False(t, product.Equal(third.TotalWithFee))
}

func TestPlan_RejectsNegativeTotal(t *testing.T) {
	_, err := Plan(dec("-0.01"))
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestPlan_IsRestartable(t *testing.T) {
	a, err := Plan(dec("50"))
	require.NoError(t, err)
	b, err := Plan(dec("80"))
	require.NoError(t, err)
	again, err := Plan(dec("50"))
	require.NoError(t, err)

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
}

func TestSelect(t *testing.T) {
	opt, err := Select(dec("100"), 12)
	require.NoError(t, err)
	assert.True(t, opt.TotalWithFee.Equal(dec("155")))
	assert.True(t, opt.MonthlyValue.Equal(dec("12.92")))

	_, err = Select(dec("100"), 0)
	assert.ErrorIs(t, err, ErrCountOutOfRange)
	_, err = Select(dec("100"), 13)
	assert.ErrorIs(t, err, ErrCountOutOfRange)
	_, err = Select(dec("-1"), 1)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestSelect_MonthlyValueUsesUnroundedTotal(t *testing.T) {
	// 90.10 × 1.05 = 94.605; 94.605 / 2 = 47.3025
	opt, err := Select(dec("90.10"), 2)
	require.NoError(t, err)
	assert.True(t, opt.TotalWithFee.Equal(dec("94.61")), "got %s", opt.TotalWithFee)
	assert.True(t, opt.MonthlyValue.Equal(dec("47.30")), "got %s", opt.MonthlyValue)
}
