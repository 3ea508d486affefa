package validation

import "testing"

func TestExtractValuationDecisionParsesRange(t *testing.T) {
	report := `估值结论：{"valuation_decision": {"target_multiple_range": [12.5, 15.0], "current_multiple": 13.2}}`
	d := ExtractValuationDecision(report)
	if d == nil {
		t.Fatal("expected a decision, got nil")
	}
	if len(d.TargetMultipleRange) != 2 || d.TargetMultipleRange[0] != 12.5 || d.TargetMultipleRange[1] != 15.0 {
		t.Errorf("unexpected range: %+v", d.TargetMultipleRange)
	}
	if d.CurrentMultiple != 13.2 {
		t.Errorf("CurrentMultiple = %v, want 13.2", d.CurrentMultiple)
	}
}

func TestExtractValuationDecisionNoMatch(t *testing.T) {
	if d := ExtractValuationDecision("没有任何估值数据的报告"); d != nil {
		t.Errorf("expected nil, got %+v", d)
	}
}

func TestExtractTargetPrice(t *testing.T) {
	price, ok := ExtractTargetPrice("目标价: 42.80元")
	if !ok || price != 42.80 {
		t.Errorf("got (%v, %v), want (42.80, true)", price, ok)
	}
	if _, ok := ExtractTargetPrice("无目标价信息"); ok {
		t.Error("expected ok=false when no target price present")
	}
}

func TestCheckValuationPEBelowHistoricalMin(t *testing.T) {
	report := `{"valuation_decision": {"target_multiple_range": [5, 8]}}`
	stats := DailyBasicStats{PEMin: 10}
	warnings, _, _ := CheckValuation(report, 0, stats)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
}

func TestCheckValuationPEConsistencyWarns(t *testing.T) {
	stats := DailyBasicStats{EPS: 2.0, CurrentPE: 10.0}
	// price 30 / eps 2 = 15, vs reported 10 -> 50% error, above 10%
	warnings, recommendedPE, has := CheckValuation("", 30, stats)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if !has || recommendedPE != 15 {
		t.Errorf("recommendedPE = %v (has=%v), want 15", recommendedPE, has)
	}
}

func TestCheckValuationPEConsistencyNoWarningWhenClose(t *testing.T) {
	stats := DailyBasicStats{EPS: 2.0, CurrentPE: 15.0}
	// price 30 / eps 2 = 15, matches reported exactly
	warnings, _, has := CheckValuation("", 30, stats)
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if has {
		t.Error("expected no recommendation when PE matches")
	}
}

func TestCheckValuationPBDivergenceWarns(t *testing.T) {
	report := "目标价: 130"
	stats := DailyBasicStats{BPS: 10, PBMedian: 5} // pbTarget = 50
	// peUpside = (130-100)/100*100 = 30%, pbUpside = (50-100)/100*100 = -50%, diff = 80
	warnings, _, _ := CheckValuation(report, 100, stats)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 divergence warning, got %d: %v", len(warnings), warnings)
	}
}
