package debate

import (
	"strings"
	"testing"
)

func TestExtractClaimsPrefersNumberAssertions(t *testing.T) {
	response := "公司全年营收同比增长30%。管理层对未来发展表态积极。"
	claims := ExtractClaims(response, 3)
	if len(claims) == 0 {
		t.Fatal("expected at least one claim")
	}
	found := false
	for _, c := range claims {
		if c == "公司全年营收同比增长30%" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the number-bearing sentence to be extracted, got %v", claims)
	}
}

func TestExtractClaimsRespectsMaxClaims(t *testing.T) {
	response := "公司全年营收同比增长10%。公司全年利润同比增长20%。公司经营现金流同比增长30%。公司综合毛利率同比提升40%。"
	claims := ExtractClaims(response, 2)
	if len(claims) != 2 {
		t.Errorf("expected exactly 2 claims, got %d: %v", len(claims), claims)
	}
}

func TestExtractClaimsFallsBackToRiskKeywords(t *testing.T) {
	response := "市场存在较大的下跌风险，投资者应保持警惕情绪。"
	claims := ExtractClaims(response, 3)
	if len(claims) == 0 {
		t.Error("expected risk-keyword sentence to be extracted as a claim")
	}
}

func TestMarkAddressedSplitsOnThreshold(t *testing.T) {
	pending := []string{"营收增长30%"}
	stillPending, addressed := MarkAddressed(pending, "确实，公司营收增长30%是真实的", 0.4)
	if len(addressed) != 1 || len(stillPending) != 0 {
		t.Errorf("expected claim addressed, got stillPending=%v addressed=%v", stillPending, addressed)
	}
}

func TestMarkAddressedLeavesUnmatchedClaimsPending(t *testing.T) {
	pending := []string{"现金流增长50%"}
	stillPending, addressed := MarkAddressed(pending, "完全不相关的回应内容", 0.4)
	if len(stillPending) != 1 || len(addressed) != 0 {
		t.Errorf("expected claim still pending, got stillPending=%v addressed=%v", stillPending, addressed)
	}
}

func TestFormatRebuttalSectionEmpty(t *testing.T) {
	if got := FormatRebuttalSection(nil, Bear); got != "" {
		t.Errorf("expected empty string for no pending claims, got %q", got)
	}
}

func TestFormatRebuttalSectionListsClaims(t *testing.T) {
	got := FormatRebuttalSection([]string{"营收增长30%", "估值偏高"}, Bear)
	if got == "" {
		t.Fatal("expected non-empty rebuttal section")
	}
	for _, want := range []string{"营收增长30%", "估值偏高", "必答项"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected rebuttal section to contain %q", want)
		}
	}
}
