package debate

import (
	"testing"

	"github.com/marketsage/ashare-agents/internal/models"
)

func TestUpdateRiskTurnRotatesHistories(t *testing.T) {
	state := models.NewRiskDebateState()
	UpdateRiskTurn(state, Momentum, "动能强劲，建议加大仓位")
	if state.MomentumHistory == "" || state.LatestSpeaker != Momentum || state.Count != 1 {
		t.Errorf("unexpected state after momentum turn: %+v", state)
	}

	UpdateRiskTurn(state, Value, "估值已偏高，建议谨慎")
	if state.ValueHistory == "" || state.LatestSpeaker != Value || state.Count != 2 {
		t.Errorf("unexpected state after value turn: %+v", state)
	}

	if state.History == "" {
		t.Error("expected shared history to accumulate across speakers")
	}
}

func TestRiskDebateDone(t *testing.T) {
	state := &models.RiskDebateState{Count: 6}
	if !RiskDebateDone(state, 2) {
		t.Error("expected done at count >= 3*maxRounds")
	}
	state.Count = 5
	if RiskDebateDone(state, 2) {
		t.Error("expected not done below 3*maxRounds")
	}
}

func TestNextRiskSpeakerRotation(t *testing.T) {
	state := &models.RiskDebateState{}
	if got := NextRiskSpeaker(state); got != Momentum {
		t.Errorf("empty state should start with Momentum, got %q", got)
	}
	state.LatestSpeaker = Momentum
	if got := NextRiskSpeaker(state); got != Value {
		t.Errorf("after Momentum should be Value, got %q", got)
	}
	state.LatestSpeaker = Value
	if got := NextRiskSpeaker(state); got != RiskMgr {
		t.Errorf("after Value should be RiskMgr, got %q", got)
	}
	state.LatestSpeaker = RiskMgr
	if got := NextRiskSpeaker(state); got != Momentum {
		t.Errorf("after RiskMgr should wrap to Momentum, got %q", got)
	}
}
