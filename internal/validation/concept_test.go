package validation

import "testing"

func TestScoreRange(t *testing.T) {
	cases := []struct {
		source   ConceptSource
		min, max int
	}{
		{SourceOfficialClassification, 50, 100},
		{SourceInvestorDisclosure, 20, 49},
		{SourceMarketAssociation, 0, 19},
	}
	for _, c := range cases {
		min, max := ScoreRange(c.source)
		if min != c.min || max != c.max {
			t.Errorf("ScoreRange(%v) = (%d,%d), want (%d,%d)", c.source, min, max, c.min, c.max)
		}
	}
}

func TestScoreConceptsClassifiesBySource(t *testing.T) {
	claims := []ConceptClaim{
		{Concept: "新能源", MatchesOfficialIndustry: true},
		{Concept: "人工智能", MentionedInDisclosure: true},
		{Concept: "元宇宙"},
	}
	scores := ScoreConcepts(claims)
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if scores[0].Source != SourceOfficialClassification || scores[0].Score != 75 {
		t.Errorf("unexpected official score: %+v", scores[0])
	}
	if scores[1].Source != SourceInvestorDisclosure || scores[1].Score != 34 {
		t.Errorf("unexpected disclosure score: %+v", scores[1])
	}
	if scores[2].Source != SourceMarketAssociation || scores[2].Score != 9 {
		t.Errorf("unexpected market-association score: %+v", scores[2])
	}
}
