package graph

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marketsage/ashare-agents/internal/tooling"
	"github.com/marketsage/ashare-agents/internal/validation"
)

// industryKeywords maps Chinese industry phrases that may appear in a
// fundamentals report to the canonical keys validation.HighDividendIndustries
// checks against.
var industryKeywords = map[string]string{
	"公用事业":   "utilities",
	"银行":     "banks",
	"高速公路":   "highways",
	"港口":     "ports",
	"不动产投资信托": "REITs",
	"REITs":   "REITs",
}

// detectIndustry returns the first HighDividendIndustries key whose
// Chinese phrase appears in report, or "" if none does.
func detectIndustry(report string) string {
	for phrase, key := range industryKeywords {
		if strings.Contains(report, phrase) {
			return key
		}
	}
	return ""
}

func floatField(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// valuationSnapshot is the numeric fundamentals data fetched directly
// from tushare, independent of whatever tool calls the LLM analyst
// itself chose to make — the validation layer needs real numbers, and
// a free-text report cannot reliably supply them.
type valuationSnapshot struct {
	currentPrice  float64
	stats         validation.DailyBasicStats
	ttmDividend   float64
	dividendYield float64
}

// fetchValuationSnapshot pulls the latest close price, a trailing-year
// PE/PB percentile window, and the TTM dividend sum for ticker. Any
// stage that fails leaves its zero value in place: CheckValuation and
// CheckDividend both already no-op on zero inputs, so a partial fetch
// degrades gracefully instead of failing the run.
func (o *Orchestrator) fetchValuationSnapshot(ctx context.Context, ticker string) valuationSnapshot {
	var snap valuationSnapshot
	if o.tushare == nil {
		return snap
	}
	tsCode, err := tooling.NormalizeTicker(ticker)
	if err != nil {
		return snap
	}

	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	startStr, endStr := start.Format("20060102"), end.Format("20060102")

	if bars, err := o.tushare.DailyBars(ctx, tsCode, startStr, endStr); err == nil && len(bars) > 0 {
		snap.currentPrice = floatField(bars[len(bars)-1], "close")
	}

	if history, err := o.tushare.DailyBasicHistory(ctx, tsCode, startStr, endStr); err == nil && len(history) > 0 {
		pes := make([]float64, 0, len(history))
		pbs := make([]float64, 0, len(history))
		for _, row := range history {
			if pe := floatField(row, "pe"); pe > 0 {
				pes = append(pes, pe)
			}
			if pb := floatField(row, "pb"); pb > 0 {
				pbs = append(pbs, pb)
			}
		}
		if len(pes) > 0 {
			sort.Float64s(pes)
			snap.stats.PEMin = pes[0]
			snap.stats.PEMedian = pes[len(pes)/2]
		}
		if len(pbs) > 0 {
			sort.Float64s(pbs)
			snap.stats.PBMedian = pbs[len(pbs)/2]
		}
		last := history[len(history)-1]
		snap.stats.CurrentPE = floatField(last, "pe")
		snap.dividendYield = floatField(last, "dv_ttm")
	}

	if indicators, err := o.tushare.FinancialIndicators(ctx, tsCode); err == nil && len(indicators) > 0 {
		latest := indicators[0]
		snap.stats.EPS = floatField(latest, "eps")
		snap.stats.BPS = floatField(latest, "bps")
	}

	if dividends, err := o.tushare.Dividends(ctx, tsCode); err == nil {
		cash := make([]validation.CashDividend, 0, len(dividends))
		for _, row := range dividends {
			exDateStr, _ := row["ex_date"].(string)
			exDate, perr := time.Parse("20060102", exDateStr)
			if perr != nil {
				continue
			}
			cash = append(cash, validation.CashDividend{ExDate: exDate, CashPerShare: floatField(row, "cash_div_tax")})
		}
		snap.ttmDividend = validation.TTMDividend(cash, end)
	}

	return snap
}

// conceptPattern matches a "X概念" hot-concept mention in free text.
var conceptPattern = regexp.MustCompile(`([\p{Han}A-Za-z0-9]{2,8})概念`)

// extractConceptClaims scans newsText (news + macro report text) for
// "X概念" mentions and classifies each against fundamentalsText (the
// fundamentals report's official industry/sector wording) and against
// disclosure markers (公告/互动易/问询函) appearing alongside the same
// mention, the two evidence tiers ScoreConcepts distinguishes.
func extractConceptClaims(newsText, fundamentalsText string) []validation.ConceptClaim {
	seen := map[string]bool{}
	var claims []validation.ConceptClaim
	for _, m := range conceptPattern.FindAllStringSubmatch(newsText, -1) {
		concept := m[1]
		if seen[concept] {
			continue
		}
		seen[concept] = true
		claims = append(claims, validation.ConceptClaim{
			Concept:                 concept + "概念",
			MatchesOfficialIndustry: strings.Contains(fundamentalsText, concept),
			MentionedInDisclosure: strings.Contains(newsText, "公告") ||
				strings.Contains(newsText, "互动易") || strings.Contains(newsText, "问询函"),
		})
	}
	return claims
}
