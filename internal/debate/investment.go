package debate

import (
	"fmt"
	"strings"

	"github.com/marketsage/ashare-agents/internal/models"
)

// Speaker names tag utterances and history entries, mirrored onto
// consts.BullResearcher/BearResearcher naming.
const (
	Bull = "Bull"
	Bear = "Bear"
)

const maxClaimsPerTurn = 3

// UpdateInvestmentTurn applies one bull-or-bear turn to state: extract
// claims, resolve pending_rebuttals against the new utterance, append
// to the speaker and shared histories, and advance count.
func UpdateInvestmentTurn(state *models.InvestDebateState, speaker, utterance string) {
	tagged := fmt.Sprintf("%s: %s", speaker, utterance)

	state.History = appendHistory(state.History, tagged)
	switch speaker {
	case Bull:
		state.BullHistory = appendHistory(state.BullHistory, tagged)
	case Bear:
		state.BearHistory = appendHistory(state.BearHistory, tagged)
	}
	state.CurrentResponse = tagged

	stillPending, addressed := MarkAddressed(state.PendingRebuttals, utterance, 0.4)
	for _, claim := range addressed {
		state.AddressedClaims[claim] = true
	}

	newClaims := ExtractClaims(utterance, maxClaimsPerTurn)
	switch speaker {
	case Bull:
		state.BullClaims = append(state.BullClaims, newClaims...)
	case Bear:
		state.BearClaims = append(state.BearClaims, newClaims...)
	}

	_ = stillPending // the opponent only needs to answer THIS turn's new claims
	state.PendingRebuttals = newClaims

	state.Count++
}

// InvestmentDebateDone reports whether the investment debate has run
// its full course (count >= 2*maxRounds).
func InvestmentDebateDone(state *models.InvestDebateState, maxRounds int) bool {
	return state.Count >= 2*maxRounds
}

// NextInvestmentSpeaker returns the speaker who should take the next
// turn, alternating off CurrentResponse's speaker tag.
func NextInvestmentSpeaker(state *models.InvestDebateState) string {
	if strings.HasPrefix(state.CurrentResponse, Bull) {
		return Bear
	}
	return Bull
}

// Opponent returns the other investment-debate speaker's name, used to
// address the rebuttal block ("对方"/bull or bear specifically).
func Opponent(speaker string) string {
	if speaker == Bull {
		return Bear
	}
	return Bull
}

func appendHistory(history, tagged string) string {
	if history == "" {
		return tagged
	}
	return history + "\n" + tagged
}
