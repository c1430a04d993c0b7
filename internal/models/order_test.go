package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	for _, valid := range []string{"Pending", "Processing", "Ready for Pickup", "Fulfilled", "Canceled"} {
		got, ok := ParseOrderStatus(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, OrderStatus(valid), got)
	}

	for _, invalid := range []string{"", "pending", "Shipped", "ready for pickup"} {
		_, ok := ParseOrderStatus(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusReadyForPickup, true},
		{StatusReadyForPickup, StatusFulfilled, true},
		{StatusPending, StatusCanceled, true},
		{StatusProcessing, StatusCanceled, true},
		{StatusReadyForPickup, StatusCanceled, true},

		// no skipping forward
		{StatusPending, StatusReadyForPickup, false},
		{StatusPending, StatusFulfilled, false},
		{StatusProcessing, StatusFulfilled, false},

		// no moving backwards
		{StatusProcessing, StatusPending, false},
		{StatusFulfilled, StatusPending, false},
		{StatusFulfilled, StatusReadyForPickup, false},

		// terminal states stay terminal
		{StatusFulfilled, StatusCanceled, false},
		{StatusCanceled, StatusPending, false},
		{StatusCanceled, StatusFulfilled, false},

		// self transitions are not transitions
		{StatusPending, StatusPending, false},
		{StatusCanceled, StatusCanceled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusReadyForPickup.Terminal())
	assert.True(t, StatusFulfilled.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}
