// Package signal extracts the structured decision record and the
// lower-cased action token from a consolidation report's free text.
package signal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marketsage/ashare-agents/internal/models"
)

// chineseDecisionPatterns is tried first, in precedence order, then the
// English fallback; default HOLD when nothing matches.
var chineseDecisionPatterns = []struct {
	pattern *regexp.Regexp
	decision string
}{
	{regexp.MustCompile(`强烈买入`), models.DecisionStrongBuy},
	{regexp.MustCompile(`强烈卖出`), models.DecisionStrongSell},
	{regexp.MustCompile(`买入`), models.DecisionBuy},
	{regexp.MustCompile(`卖出`), models.DecisionSell},
	{regexp.MustCompile(`减持`), models.DecisionReduce},
	{regexp.MustCompile(`持有`), models.DecisionHold},
}

var englishDecisionPatterns = []struct {
	pattern *regexp.Regexp
	decision string
}{
	{regexp.MustCompile(`(?i)STRONG_BUY`), models.DecisionStrongBuy},
	{regexp.MustCompile(`(?i)STRONG_SELL`), models.DecisionStrongSell},
	{regexp.MustCompile(`(?i)\bBUY\b`), models.DecisionBuy},
	{regexp.MustCompile(`(?i)\bSELL\b`), models.DecisionSell},
	{regexp.MustCompile(`(?i)\bREDUCE\b`), models.DecisionReduce},
	{regexp.MustCompile(`(?i)\bHOLD\b`), models.DecisionHold},
}

var (
	confidencePattern   = regexp.MustCompile(`置信度[:：]\s*(\d+(?:\.\d+)?)\s*%`)
	targetPricePattern  = regexp.MustCompile(`目标价[:：]\s*(\d+\.?\d*)`)
	stopLossPattern     = regexp.MustCompile(`止损价[:：]\s*(\d+\.?\d*)`)
	positionSizePattern = regexp.MustCompile(`建议仓位[:：]\s*(\d+)\s*%`)
)

// entryPricePatterns is tried in order against a report to recover the
// price at decision time when no authoritative current price is
// otherwise available.
var entryPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`当前价格[:：]\s*(\d+\.?\d*)`),
	regexp.MustCompile(`收盘价[:：]\s*(\d+\.?\d*)`),
	regexp.MustCompile(`最新价[:：]\s*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)close[:：]\s*(\d+\.?\d*)`),
}

// ExtractEntryPrice recovers the "price at decision time" a report
// states about itself, trying each of entryPricePatterns in turn.
func ExtractEntryPrice(report string) (decimal.Decimal, bool) {
	for _, p := range entryPricePatterns {
		if m := p.FindStringSubmatch(report); len(m) == 2 {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return decimal.NewFromFloat(v), true
			}
		}
	}
	return decimal.Decimal{}, false
}

// defaultConfidence maps a decision type to its default confidence,
// overridden by an explicit "置信度: X%" line when present.
func defaultConfidence(decisionType string) decimal.Decimal {
	switch decisionType {
	case models.DecisionStrongBuy, models.DecisionStrongSell:
		return decimal.NewFromFloat(0.9)
	case models.DecisionBuy, models.DecisionSell:
		return decimal.NewFromFloat(0.7)
	case models.DecisionReduce:
		return decimal.NewFromFloat(0.6)
	default:
		return decimal.NewFromFloat(0.5)
	}
}

// ExtractDecision parses report (the consolidation report, or failing
// that the final trade decision text) into decision type, confidence,
// target price, stop loss, and position size
func ExtractDecision(report string) (decisionType string, confidence, targetPrice, stopLoss decimal.Decimal, positionSize int) {
	decisionType = models.DecisionHold
	for _, p := range chineseDecisionPatterns {
		if p.pattern.MatchString(report) {
			decisionType = p.decision
			break
		}
	}
	if decisionType == models.DecisionHold {
		for _, p := range englishDecisionPatterns {
			if p.pattern.MatchString(report) {
				decisionType = p.decision
				break
			}
		}
	}

	confidence = defaultConfidence(decisionType)
	if m := confidencePattern.FindStringSubmatch(report); len(m) == 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			confidence = decimal.NewFromFloat(v / 100)
		}
	}

	if m := targetPricePattern.FindStringSubmatch(report); len(m) == 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			targetPrice = decimal.NewFromFloat(v)
		}
	}
	if m := stopLossPattern.FindStringSubmatch(report); len(m) == 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			stopLoss = decimal.NewFromFloat(v)
		}
	}
	if m := positionSizePattern.FindStringSubmatch(report); len(m) == 2 {
		if v, err := strconv.Atoi(m[1]); err == nil {
			positionSize = v
		}
	}
	return decisionType, confidence, targetPrice, stopLoss, positionSize
}

// BuildDecisionRecord extracts a full DecisionRecord from the
// consolidation report (falling back to finalTradeDecision when the
// consolidation report is empty), for writing to the decision memory
// store via add_or_update. currentPrice is the data-provider-sourced
// price at decision time; when it is zero, the record falls back to
// whatever price the report text states about itself.
func BuildDecisionRecord(ticker, tradeDate, consolidationReport, finalTradeDecision, situation string, currentPrice decimal.Decimal) *models.DecisionRecord {
	report := consolidationReport
	if strings.TrimSpace(report) == "" {
		report = finalTradeDecision
	}

	decisionType, confidence, targetPrice, stopLoss, positionSize := ExtractDecision(report)

	entryPrice := currentPrice
	if entryPrice.IsZero() {
		if v, ok := ExtractEntryPrice(report); ok {
			entryPrice = v
		}
	}

	return &models.DecisionRecord{
		Ticker:         ticker,
		DecisionDate:   tradeDate,
		Situation:      situation,
		Recommendation: report,
		DecisionType:   decisionType,
		Confidence:     confidence,
		TargetPrice:    targetPrice,
		StopLoss:       stopLoss,
		EntryPrice:     entryPrice,
		PositionSize:   positionSize,
	}
}

// actionToken maps a decision_type to the lower-cased action token
// process_signal returns.
func actionToken(decisionType string) string {
	return strings.ToLower(decisionType)
}

// ProcessSignal implements the process_signal core contract: given the
// final_trade_decision Markdown, returns the lower-cased action token
// (buy/sell/hold/strong_buy/strong_sell/reduce).
func ProcessSignal(finalTradeDecisionMarkdown string) string {
	decisionType, _, _, _, _ := ExtractDecision(finalTradeDecisionMarkdown)
	return actionToken(decisionType)
}

// FormatDecisionLine renders decisionType/confidence as the
// human-readable "X (confidence: Y%)" summary line the run
// controller writes into analysis_summary.json's "decision" field.
func FormatDecisionLine(decisionType string, confidence decimal.Decimal) string {
	pct := confidence.Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%s (confidence: %s%%)", decisionType, pct.StringFixed(0))
}
