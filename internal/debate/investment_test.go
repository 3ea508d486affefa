package debate

import (
	"strings"
	"testing"

	"github.com/marketsage/ashare-agents/internal/models"
)

func TestUpdateInvestmentTurnAppendsHistoryAndCount(t *testing.T) {
	state := models.NewInvestDebateState()
	UpdateInvestmentTurn(state, Bull, "营收增长30%，因此估值有支撑")

	if state.Count != 1 {
		t.Errorf("Count = %d, want 1", state.Count)
	}
	if state.CurrentResponse != "Bull: 营收增长30%，因此估值有支撑" {
		t.Errorf("unexpected CurrentResponse: %q", state.CurrentResponse)
	}
	if state.BullHistory == "" || state.History == "" {
		t.Error("expected both shared and speaker histories populated")
	}
	if len(state.BullClaims) == 0 {
		t.Error("expected extracted bull claims")
	}
	if len(state.PendingRebuttals) == 0 {
		t.Error("expected pending rebuttals carried forward to the opponent")
	}
}

func TestUpdateInvestmentTurnAdvancesOnBothSpeakers(t *testing.T) {
	state := models.NewInvestDebateState()
	UpdateInvestmentTurn(state, Bull, "营收增长30%，因此估值有支撑")
	UpdateInvestmentTurn(state, Bear, "30%增长不可持续，存在风险")

	if state.Count != 2 {
		t.Errorf("Count = %d, want 2", state.Count)
	}
	if state.BearHistory == "" {
		t.Error("expected bear history populated after bear's turn")
	}
	if state.CurrentResponse == "" || !strings.HasPrefix(state.CurrentResponse, "Bear:") {
		t.Errorf("expected CurrentResponse tagged with Bear, got %q", state.CurrentResponse)
	}
}

func TestInvestmentDebateDone(t *testing.T) {
	state := &models.InvestDebateState{Count: 4}
	if !InvestmentDebateDone(state, 2) {
		t.Error("expected debate done at count >= 2*maxRounds")
	}
	state.Count = 3
	if InvestmentDebateDone(state, 2) {
		t.Error("expected debate not done below 2*maxRounds")
	}
}

func TestNextInvestmentSpeakerAlternates(t *testing.T) {
	state := &models.InvestDebateState{}
	if got := NextInvestmentSpeaker(state); got != Bull {
		t.Errorf("empty state should start with Bull, got %q", got)
	}
	state.CurrentResponse = "Bull: some point"
	if got := NextInvestmentSpeaker(state); got != Bear {
		t.Errorf("after Bull should be Bear, got %q", got)
	}
	state.CurrentResponse = "Bear: counter point"
	if got := NextInvestmentSpeaker(state); got != Bull {
		t.Errorf("after Bear should be Bull, got %q", got)
	}
}

func TestOpponent(t *testing.T) {
	if Opponent(Bull) != Bear {
		t.Error("Opponent(Bull) should be Bear")
	}
	if Opponent(Bear) != Bull {
		t.Error("Opponent(Bear) should be Bull")
	}
}
