package signal

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/marketsage/ashare-agents/internal/models"
)

func TestExtractDecisionChinesePatterns(t *testing.T) {
	cases := []struct {
		report string
		want   string
	}{
		{"综合判断：强烈买入，置信度: 88%", models.DecisionStrongBuy},
		{"综合判断：强烈卖出", models.DecisionStrongSell},
		{"建议买入该股票", models.DecisionBuy},
		{"建议卖出", models.DecisionSell},
		{"建议减持仓位", models.DecisionReduce},
		{"维持持有", models.DecisionHold},
		{"没有明确建议的文本", models.DecisionHold},
	}
	for _, c := range cases {
		got, _, _, _, _ := ExtractDecision(c.report)
		if got != c.want {
			t.Errorf("ExtractDecision(%q) = %q, want %q", c.report, got, c.want)
		}
	}
}

func TestExtractDecisionEnglishFallback(t *testing.T) {
	got, _, _, _, _ := ExtractDecision("Recommendation: STRONG_BUY given momentum")
	if got != models.DecisionStrongBuy {
		t.Errorf("got %q, want STRONG_BUY", got)
	}
}

func TestExtractDecisionConfidenceOverride(t *testing.T) {
	_, confidence, _, _, _ := ExtractDecision("买入，置信度: 75%")
	want := decimal.NewFromFloat(0.75)
	if !confidence.Equal(want) {
		t.Errorf("confidence = %s, want %s", confidence, want)
	}
}

func TestExtractDecisionDefaultConfidence(t *testing.T) {
	_, confidence, _, _, _ := ExtractDecision("建议减持")
	want := decimal.NewFromFloat(0.6)
	if !confidence.Equal(want) {
		t.Errorf("confidence = %s, want %s", confidence, want)
	}
}

func TestExtractDecisionTargetPriceStopLossPosition(t *testing.T) {
	report := "买入。目标价: 38.5 止损价: 30.2 建议仓位: 20%"
	_, _, targetPrice, stopLoss, positionSize := ExtractDecision(report)
	if !targetPrice.Equal(decimal.NewFromFloat(38.5)) {
		t.Errorf("targetPrice = %s, want 38.5", targetPrice)
	}
	if !stopLoss.Equal(decimal.NewFromFloat(30.2)) {
		t.Errorf("stopLoss = %s, want 30.2", stopLoss)
	}
	if positionSize != 20 {
		t.Errorf("positionSize = %d, want 20", positionSize)
	}
}

func TestBuildDecisionRecordFallsBackToFinalTradeDecision(t *testing.T) {
	rec := BuildDecisionRecord("600519", "2026-07-31", "", "建议买入，置信度: 80%", "situation text", decimal.Decimal{})
	if rec.Recommendation != "建议买入，置信度: 80%" {
		t.Errorf("expected fallback to finalTradeDecision, got %q", rec.Recommendation)
	}
	if rec.DecisionType != models.DecisionBuy {
		t.Errorf("DecisionType = %q, want BUY", rec.DecisionType)
	}
	if rec.Ticker != "600519" || rec.DecisionDate != "2026-07-31" {
		t.Errorf("unexpected ticker/date: %+v", rec)
	}
}

func TestExtractEntryPriceTriesPatternsInOrder(t *testing.T) {
	price, ok := ExtractEntryPrice("当前价格: 42.30，建议买入")
	if !ok || !price.Equal(decimal.NewFromFloat(42.30)) {
		t.Errorf("ExtractEntryPrice = %s, %v, want 42.30, true", price, ok)
	}
	price, ok = ExtractEntryPrice("收盘价：18.8，维持持有")
	if !ok || !price.Equal(decimal.NewFromFloat(18.8)) {
		t.Errorf("ExtractEntryPrice = %s, %v, want 18.8, true", price, ok)
	}
	if _, ok := ExtractEntryPrice("没有价格信息"); ok {
		t.Error("expected no match")
	}
}

func TestBuildDecisionRecordPrefersSuppliedCurrentPrice(t *testing.T) {
	rec := BuildDecisionRecord("600519", "2026-07-31", "建议买入。当前价格: 38.0", "", "situation", decimal.NewFromFloat(42.0))
	if !rec.EntryPrice.Equal(decimal.NewFromFloat(42.0)) {
		t.Errorf("EntryPrice = %s, want 42.0 (supplied price takes precedence)", rec.EntryPrice)
	}
}

func TestProcessSignalReturnsLowercaseToken(t *testing.T) {
	got := ProcessSignal("综合判断：强烈买入")
	if got != "strong_buy" {
		t.Errorf("ProcessSignal = %q, want strong_buy", got)
	}
}

func TestFormatDecisionLine(t *testing.T) {
	got := FormatDecisionLine(models.DecisionBuy, decimal.NewFromFloat(0.7))
	want := "BUY (confidence: 70%)"
	if got != want {
		t.Errorf("FormatDecisionLine = %q, want %q", got, want)
	}
}
