package debate

import (
	"fmt"

	"github.com/marketsage/ashare-agents/internal/models"
)

// Risk-debate speaker names (momentum/value/risk-manager).
const (
	Momentum = "Momentum"
	Value    = "Value"
	RiskMgr  = "RiskMgr"
)

// UpdateRiskTurn applies one risk-debate turn, analogous to
// UpdateInvestmentTurn but across three speakers and without claim
// tracking (claim tracking only applies to the investment debate).
func UpdateRiskTurn(state *models.RiskDebateState, speaker, utterance string) {
	tagged := fmt.Sprintf("%s: %s", speaker, utterance)

	state.History = appendHistory(state.History, tagged)
	switch speaker {
	case Momentum:
		state.MomentumHistory = appendHistory(state.MomentumHistory, tagged)
		state.CurrentMomentumResponse = tagged
	case Value:
		state.ValueHistory = appendHistory(state.ValueHistory, tagged)
		state.CurrentValueResponse = tagged
	case RiskMgr:
		state.RiskMgrHistory = appendHistory(state.RiskMgrHistory, tagged)
		state.CurrentRiskMgrResponse = tagged
	}

	state.LatestSpeaker = speaker
	state.Count++
}

// RiskDebateDone reports whether the risk debate has run its full
// course (count >= 3*maxRounds).
func RiskDebateDone(state *models.RiskDebateState, maxRounds int) bool {
	return state.Count >= 3*maxRounds
}

// NextRiskSpeaker returns the speaker who should take the next turn,
// rotating momentum -> value -> risk-manager -> momentum.
func NextRiskSpeaker(state *models.RiskDebateState) string {
	switch state.LatestSpeaker {
	case Momentum:
		return Value
	case Value:
		return RiskMgr
	default:
		return Momentum
	}
}
