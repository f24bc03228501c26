package gateway

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		want   int64
	}{
		{"whole rupees", d("440"), 44000},
		{"with paise", d("123.45"), 12345},
		{"sub-paise rounds half up", d("10.005"), 1001},
		{"sub-paise rounds down", d("10.004"), 1000},
		{"one paisa", d("0.01"), 1},
		{"zero", d("0"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MinorUnits(tt.amount))
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, d("440").Equal(FromMinorUnits(44000)))
	assert.True(t, d("123.45").Equal(FromMinorUnits(12345)))
	assert.True(t, FromMinorUnits(0).IsZero())

	t.Run("round trip", func(t *testing.T) {
		for _, v := range []string{"0.01", "80", "399.99", "12345.67"} {
			amount := d(v)
			assert.True(t, amount.Equal(FromMinorUnits(MinorUnits(amount))), "amount %s", v)
		}
	})
}

func TestNewClientAcceptsConfiguredTimeout(t *testing.T) {
	// The SDK's SetTimeout takes int16, so the constructor must too.
	var timeoutSeconds int16 = 10
	c := NewClient("rzp_test_key", "secret", timeoutSeconds)
	require.NotNil(t, c)

	t.Run("zero timeout leaves the SDK default", func(t *testing.T) {
		c := NewClient("rzp_test_key", "secret", 0)
		require.NotNil(t, c)

		_, err := c.CreateOrder(context.Background(), d("0"), "INR", nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestCreateOrderRejectsInvalidAmount(t *testing.T) {
	c := NewClient("rzp_test_key", "secret", 1)

	for _, v := range []string{"0", "-1", "-0.01"} {
		_, err := c.CreateOrder(context.Background(), d(v), "INR", nil)
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %s", v)
	}
}

func TestCreateOrderHonoursCancelledContext(t *testing.T) {
	c := NewClient("rzp_test_key", "secret", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CreateOrder(ctx, d("100"), "INR", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGatewayErrorUnwraps(t *testing.T) {
	inner := context.DeadlineExceeded
	err := &GatewayError{Op: "create order", Err: inner}

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "create order")
}
