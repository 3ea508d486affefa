package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDeriveOutcomeCategoryProfit(t *testing.T) {
	got := DeriveOutcomeCategory(decimal.NewFromFloat(1.2))
	if got != OutcomeProfit {
		t.Errorf("got %q, want %q", got, OutcomeProfit)
	}
}

func TestDeriveOutcomeCategoryLoss(t *testing.T) {
	got := DeriveOutcomeCategory(decimal.NewFromFloat(-2.0))
	if got != OutcomeLoss {
		t.Errorf("got %q, want %q", got, OutcomeLoss)
	}
}

func TestDeriveOutcomeCategoryBreakevenAtBoundaries(t *testing.T) {
	for _, v := range []float64{0.5, 0, -0.5, 0.3, -0.3} {
		got := DeriveOutcomeCategory(decimal.NewFromFloat(v))
		if got != OutcomeBreakeven {
			t.Errorf("DeriveOutcomeCategory(%v) = %q, want %q", v, got, OutcomeBreakeven)
		}
	}
}

func TestDeriveOutcomeCategoryJustOverThreshold(t *testing.T) {
	if got := DeriveOutcomeCategory(decimal.NewFromFloat(0.51)); got != OutcomeProfit {
		t.Errorf("got %q, want %q", got, OutcomeProfit)
	}
	if got := DeriveOutcomeCategory(decimal.NewFromFloat(-0.51)); got != OutcomeLoss {
		t.Errorf("got %q, want %q", got, OutcomeLoss)
	}
}
