package validation

// ConceptSource classifies where a hot concept claimed in the news
// report is actually substantiated.
type ConceptSource int

const (
	// SourceOfficialClassification: the concept matches the company's
	// official industry/sector classification.
	SourceOfficialClassification ConceptSource = iota
	// SourceInvestorDisclosure: the concept is mentioned only in
	// investor Q&A or public announcements, not an official
	// classification.
	SourceInvestorDisclosure
	// SourceMarketAssociation: the concept appears only as market
	// chatter, with no company-sourced substantiation.
	SourceMarketAssociation
)

// ScoreRange returns the [min, max] score band assigned to a concept
// given its source: 50-100 official, 20-49 investor-disclosed, 0-19
// pure market association.
func ScoreRange(source ConceptSource) (min, max int) {
	switch source {
	case SourceOfficialClassification:
		return 50, 100
	case SourceInvestorDisclosure:
		return 20, 49
	default:
		return 0, 19
	}
}

// ConceptClaim is one hot-concept claim extracted from the news report,
// alongside the evidence used to classify its source.
type ConceptClaim struct {
	Concept              string
	MatchesOfficialIndustry bool
	MentionedInDisclosure   bool
}

// ConceptScore is the validated score for one claimed concept.
type ConceptScore struct {
	Concept string
	Source  ConceptSource
	Score   int // midpoint of the matched band
}

// ScoreConcepts classifies and scores every claimed concept, for
// inclusion in the consolidation report's concept-relevance section.
func ScoreConcepts(claims []ConceptClaim) []ConceptScore {
	scores := make([]ConceptScore, 0, len(claims))
	for _, c := range claims {
		var source ConceptSource
		switch {
		case c.MatchesOfficialIndustry:
			source = SourceOfficialClassification
		case c.MentionedInDisclosure:
			source = SourceInvestorDisclosure
		default:
			source = SourceMarketAssociation
		}
		min, max := ScoreRange(source)
		scores = append(scores, ConceptScore{
			Concept: c.Concept,
			Source:  source,
			Score:   (min + max) / 2,
		})
	}
	return scores
}
