package models

import "testing"

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusReady, false},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusConfirmed, OrderStatusReady, false},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusPreparing, OrderStatusConfirmed, false},
		{OrderStatusReady, OrderStatusCompleted, true},
		{OrderStatusReady, OrderStatusCancelled, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tc := range cases {
		order := Order{Status: tc.from}
		if got := order.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestOrderIsTerminal(t *testing.T) {
	for _, status := range []string{OrderStatusCompleted, OrderStatusCancelled} {
		if o := (Order{Status: status}); !o.IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
	for _, status := range []string{OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady} {
		if o := (Order{Status: status}); o.IsTerminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	if !IsValidOrderStatus("preparing") {
		t.Error("preparing should be valid")
	}
	if IsValidOrderStatus("cooking") {
		t.Error("cooking should not be valid")
	}
}
