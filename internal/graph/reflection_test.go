package graph

import (
	"testing"

	"github.com/marketsage/ashare-agents/internal/models"
)

func TestEvaluateDecisionBuyProfitScoresHigh(t *testing.T) {
	v := evaluateDecision(models.DecisionBuy, 20.0)
	if v.score < 7 {
		t.Errorf("score = %d, want >= 7 for a profitable BUY", v.score)
	}
}

func TestEvaluateDecisionBuyLossScoresLow(t *testing.T) {
	v := evaluateDecision(models.DecisionBuy, -12.0)
	if v.score > 3 {
		t.Errorf("score = %d, want <= 3 for a heavily losing BUY", v.score)
	}
}

func TestEvaluateDecisionSellAvoidedDropScoresHigh(t *testing.T) {
	v := evaluateDecision(models.DecisionSell, -8.0)
	if v.score < 8 {
		t.Errorf("score = %d, want >= 8 for a SELL ahead of a >5%% drop", v.score)
	}
}

func TestEvaluateDecisionSellMissedRallyScoresLow(t *testing.T) {
	v := evaluateDecision(models.DecisionSell, 15.0)
	if v.score > 3 {
		t.Errorf("score = %d, want <= 3 for a SELL that missed a big rally", v.score)
	}
}

func TestEvaluateDecisionHoldInQuietMarketScoresHigh(t *testing.T) {
	v := evaluateDecision(models.DecisionHold, 1.5)
	if v.score != 7 {
		t.Errorf("score = %d, want 7 for a HOLD through a <3%% move", v.score)
	}
}

func TestEvaluateDecisionHoldMissingRallyIsMixed(t *testing.T) {
	v := evaluateDecision(models.DecisionHold, 8.0)
	if v.score != 6 {
		t.Errorf("score = %d, want 6 for a HOLD that missed an upside move", v.score)
	}
}
