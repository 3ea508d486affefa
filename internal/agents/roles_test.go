package agents

import (
	"strings"
	"testing"
	"time"
)

func TestRoleRenderFillsPlaceholders(t *testing.T) {
	role := Role{
		Name:         "test_role",
		SystemPrompt: "今天是 {today}，标的 {ticker}，可用工具：{tool_names}。current={current_date}",
		ToolNames:    []string{"tool_a", "tool_b"},
	}
	today := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	got := role.Render("600519", today)

	for _, want := range []string{"2026-07-31", "600519", "tool_a, tool_b"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %q, expected to contain %q", got, want)
		}
	}
	if strings.Contains(got, "{today}") || strings.Contains(got, "{ticker}") || strings.Contains(got, "{tool_names}") || strings.Contains(got, "{current_date}") {
		t.Errorf("Render() left unfilled placeholders: %q", got)
	}
}

func TestRoleRenderWithNoToolNames(t *testing.T) {
	role := Role{SystemPrompt: "工具：{tool_names}"}
	got := role.Render("000001", time.Now())
	if !strings.HasSuffix(got, "工具：") {
		t.Errorf("expected empty tool list to render as empty string, got %q", got)
	}
}

func TestAllRoleFactoriesProduceRenderableTemplates(t *testing.T) {
	factories := []func() Role{
		MarketAnalystRole, SentimentAnalystRole, NewsAnalystRole,
		FundamentalsAnalystRole, ChinaMarketAnalystRole,
		BullResearcherRole, BearResearcherRole, ResearchManagerRole,
		TraderRole, MomentumDebaterRole, ValueDebaterRole,
		RiskManagerDebaterRole, RiskJudgeRole, ConsolidationRole,
	}
	today := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	for _, factory := range factories {
		role := factory()
		if role.Name == "" {
			t.Error("expected non-empty role name")
		}
		rendered := role.Render("600519", today)
		if strings.Contains(rendered, "{today}") || strings.Contains(rendered, "{ticker}") {
			t.Errorf("role %q left placeholders unrendered: %q", role.Name, rendered)
		}
		if role.RecursionLimit <= 0 {
			t.Errorf("role %q has non-positive RecursionLimit %d", role.Name, role.RecursionLimit)
		}
	}
}
