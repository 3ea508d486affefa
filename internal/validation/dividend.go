package validation

import (
	"fmt"
	"math"
	"time"
)

// HighDividendIndustries names the sectors the dividend check always
// runs on, regardless of current yield.
var HighDividendIndustries = map[string]bool{
	"utilities": true,
	"banks":     true,
	"highways":  true,
	"ports":     true,
	"REITs":     true,
}

// CashDividend is one ex-dividend event, used to compute the trailing
// twelve-month dividend sum.
type CashDividend struct {
	ExDate     time.Time
	CashPerShare float64
}

// ShouldCheckDividend reports whether the dividend-validity check
// applies: the industry is one of the always-checked sectors, or the
// reported current yield already exceeds 3%.
func ShouldCheckDividend(industry string, currentYield float64) bool {
	return HighDividendIndustries[industry] || currentYield > 3.0
}

// TTMDividend sums dividends with ex-dates in the last 365 days from
// asOf. When no dividend falls in that window, it falls back to the sum
// over the most recently completed fiscal year (Jan 1 – Dec 31 of
// asOf's year minus one).
func TTMDividend(dividends []CashDividend, asOf time.Time) float64 {
	cutoff := asOf.AddDate(-1, 0, 0)
	var sum float64
	for _, d := range dividends {
		if !d.ExDate.Before(cutoff) && !d.ExDate.After(asOf) {
			sum += d.CashPerShare
		}
	}
	if sum > 0 {
		return sum
	}

	lastFullYear := asOf.Year() - 1
	yearStart := time.Date(lastFullYear, time.January, 1, 0, 0, 0, 0, asOf.Location())
	yearEnd := time.Date(lastFullYear, time.December, 31, 23, 59, 59, 0, asOf.Location())
	for _, d := range dividends {
		if !d.ExDate.Before(yearStart) && !d.ExDate.After(yearEnd) {
			sum += d.CashPerShare
		}
	}
	return sum
}

// CheckDividend applies the dividend-validity rule: compares
// TTM-dividend-implied yield against the reported yield (>15% disagreement
// warns), and a dividend-based target price against the primary target
// (>30% disagreement warns).
func CheckDividend(ttmDividend, currentPrice, reportedYieldPct, primaryTargetPrice float64) []string {
	var warnings []string
	if currentPrice <= 0 {
		return warnings
	}

	impliedYieldPct := ttmDividend / currentPrice * 100
	if reportedYieldPct > 0 {
		diff := math.Abs(impliedYieldPct-reportedYieldPct) / reportedYieldPct
		if diff > 0.15 {
			warnings = append(warnings, fmt.Sprintf(
				"股息率矛盾：TTM分红%.2f元 ÷ 现价%.2f元 = %.2f%%，但报告标注%.2f%%（误差%.0f%%）",
				ttmDividend, currentPrice, impliedYieldPct, reportedYieldPct, diff*100))
		}
	}

	if primaryTargetPrice > 0 && reportedYieldPct > 0 {
		// Dividend-based target price: the price at which the TTM
		// dividend yields the report's own stated target yield.
		dividendTargetPrice := ttmDividend / (reportedYieldPct / 100)
		diff := math.Abs(dividendTargetPrice-primaryTargetPrice) / primaryTargetPrice
		if diff > 0.30 {
			warnings = append(warnings, fmt.Sprintf(
				"股息定价分歧：股息贴现目标价%.2f元 与主目标价%.2f元差异%.0f%%",
				dividendTargetPrice, primaryTargetPrice, diff*100))
		}
	}

	return warnings
}
