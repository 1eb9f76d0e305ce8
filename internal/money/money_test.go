package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_RejectsNegativeAndUnknownCurrency(t *testing.T) {
	_, err := New(-1, KRW)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = New(100, Currency("XXX"))
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAdd_Subtract_SameCurrency(t *testing.T) {
	a, _ := New(1000, KRW)
	b, _ := New(250, KRW)

	sum, err := a.Add(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount)

	diff, err := a.Subtract(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(750), diff.Amount)

	// operands are untouched
	assert.Equal(t, int64(1000), a.Amount)
	assert.Equal(t, int64(250), b.Amount)
}

func TestBinaryOps_CurrencyMismatch(t *testing.T) {
	krw, _ := New(1000, KRW)
	usd, _ := New(1000, USD)

	_, err := krw.Add(usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = krw.Subtract(usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = krw.Compare(usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestSubtract_RejectsNegativeResult(t *testing.T) {
	a, _ := New(100, USD)
	b, _ := New(200, USD)

	_, err := a.Subtract(b)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestMultiplyQuantity(t *testing.T) {
	unit, _ := New(1000, KRW)

	total, err := unit.MultiplyQuantity(2)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), total.Amount)
	assert.Equal(t, KRW, total.Currency)

	_, err = unit.MultiplyQuantity(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestMultiplyQuantity_Overflow(t *testing.T) {
	unit, _ := New(math.MaxInt64/2+1, KRW)

	_, err := unit.MultiplyQuantity(2)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	// zero quantity never overflows
	total, err := unit.MultiplyQuantity(0)
	assert.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestCompare(t *testing.T) {
	small, _ := New(100, EUR)
	big, _ := New(200, EUR)

	cmp, err := small.Compare(big)
	assert.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = big.Compare(small)
	assert.NoError(t, err)
	assert.Equal(t, 1, cmp)

	cmp, err = small.Compare(small)
	assert.NoError(t, err)
	assert.Equal(t, 0, cmp)
}

func TestParseCurrency(t *testing.T) {
	currency, err := ParseCurrency(" krw ")
	assert.NoError(t, err)
	assert.Equal(t, KRW, currency)

	_, err = ParseCurrency("ABC")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}
