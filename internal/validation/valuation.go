// Package validation implements the post-hoc consistency checks run
// on the fundamentals report before downstream agents consume it:
// PE-range, PE-consistency, PB-cross-check, dividend-validity, and
// concept-relevance scoring.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// DailyBasicStats carries the valuation statistics the fundamentals
// report's PE/PB claims are checked against, sourced from tushare's
// daily_basic history.
type DailyBasicStats struct {
	PEMin     float64
	PEMedian  float64
	CurrentPE float64
	BPS       float64
	PBMedian  float64
	EPS       float64
}

// ValuationDecision is the JSON block a fundamentals report may embed:
// {"valuation_decision": {"target_multiple_range": [lo, hi], ...}}.
type ValuationDecision struct {
	TargetMultipleRange []float64 `json:"target_multiple_range"`
	CurrentMultiple     float64   `json:"current_multiple"`
}

var valuationBlockPattern = regexp.MustCompile(`\{[^{}]*"valuation_decision"[\s\S]*?\}\s*\}`)

var (
	targetRangePattern = regexp.MustCompile(`target_multiple_range["\s:]+\[?\s*(\d+\.?\d*)\s*[,\-]\s*(\d+\.?\d*)`)
	currentMultiplePattern = regexp.MustCompile(`current_multiple["\s:]+(\d+\.?\d*)`)
	targetPricePattern     = regexp.MustCompile(`目标价[：:\s]*(\d+\.?\d*)`)
)

// ExtractValuationDecision pulls the target_multiple_range /
// current_multiple fields out of report's embedded JSON block, falling
// back to bare regex extraction when the block doesn't parse cleanly.
func ExtractValuationDecision(report string) *ValuationDecision {
	d := &ValuationDecision{}
	found := false

	if m := targetRangePattern.FindStringSubmatch(report); len(m) == 3 {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			d.TargetMultipleRange = []float64{lo, hi}
			found = true
		}
	}
	if m := currentMultiplePattern.FindStringSubmatch(report); len(m) == 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			d.CurrentMultiple = v
			found = true
		}
	}
	if !found {
		return nil
	}
	return d
}

// ExtractTargetPrice pulls the reported "目标价: X" figure out of report.
func ExtractTargetPrice(report string) (float64, bool) {
	m := targetPricePattern.FindStringSubmatch(report)
	if len(m) != 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CheckValuation runs the PE-range, PE-consistency, and PB-cross-check
// rules against one fundamentals report, returning the
// warning lines to surface under "Data Consistency Warnings". Returns
// the recommended PE when the reported PE disagrees with price/eps by
// more than 5%, even below the 10% warning threshold.
func CheckValuation(report string, currentPrice float64, stats DailyBasicStats) (warnings []string, recommendedPE float64, hasRecommendation bool) {
	decision := ExtractValuationDecision(report)

	if decision != nil && stats.PEMin > 0 && len(decision.TargetMultipleRange) >= 1 {
		if decision.TargetMultipleRange[0] < stats.PEMin {
			warnings = append(warnings, fmt.Sprintf(
				"PE区间下限(%.1f倍)低于历史最小值(%.1f倍)，相当于假设市场给出史无前例的低估值",
				decision.TargetMultipleRange[0], stats.PEMin))
		}
	}

	if stats.EPS > 0 && currentPrice > 0 {
		calculatedPE := currentPrice / stats.EPS
		reportedPE := stats.CurrentPE
		if decision != nil && decision.CurrentMultiple > 0 {
			reportedPE = decision.CurrentMultiple
		}
		if reportedPE > 0 {
			errRatio := math.Abs(calculatedPE-reportedPE) / reportedPE
			if errRatio > 0.10 {
				warnings = append(warnings, fmt.Sprintf(
					"PE数学矛盾：股价%.2f元 ÷ EPS%.2f元 = %.1f倍，但报告标注%.1f倍（误差%.0f%%），建议使用计算值",
					currentPrice, stats.EPS, calculatedPE, reportedPE, errRatio*100))
				recommendedPE, hasRecommendation = calculatedPE, true
			} else if errRatio > 0.05 {
				recommendedPE, hasRecommendation = calculatedPE, true
			}
		}
	}

	if stats.BPS > 0 && stats.PBMedian > 0 {
		pbTarget := stats.BPS * stats.PBMedian
		if peTarget, ok := ExtractTargetPrice(report); ok && currentPrice > 0 {
			peUpside := (peTarget - currentPrice) / currentPrice * 100
			pbUpside := (pbTarget - currentPrice) / currentPrice * 100
			diff := math.Abs(peUpside - pbUpside)
			if diff > 30 {
				warnings = append(warnings, fmt.Sprintf(
					"估值重大分歧：PE目标价%.2f元(较现价%+.0f%%) vs PB目标价%.2f元(较现价%+.0f%%)，差异%.0f个百分点",
					peTarget, peUpside, pbTarget, pbUpside, diff))
			}
		}
	}

	return warnings, recommendedPE, hasRecommendation
}
