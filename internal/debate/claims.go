package debate

import (
	"fmt"
	"regexp"
	"strings"
)

// sentenceSplit splits a response on Chinese and English sentence
// terminators, grounded on claim_extractor.py's `extract_claims_simple`.
var sentenceSplit = regexp.MustCompile(`[。！？\n;]`)

var (
	numberAssertionPattern = regexp.MustCompile(`\d+(\.\d+)?[%倍元亿万美元美金]`)
	conclusionPattern      = regexp.MustCompile(`因此|所以|表明|说明|意味着|可见|综上|由此可见`)
	riskKeywordPattern     = regexp.MustCompile(`风险|压力|下跌|减持|减仓|警惕|注意|泡沫|高估|危险|隐患`)
	opportunityPattern     = regexp.MustCompile(`机会|潜力|增长|买入|加仓|看好|低估|安全边际|上涨空间`)
)

// ExtractClaims pulls up to maxClaims short textual claims out of a
// bull/bear turn, in three precedence tiers: number-bearing assertions
// first, then conclusion sentences, then risk/opportunity sentences.
// Rule-based, no LLM call, grounded on claim_extractor.py's
// `extract_claims_simple`.
func ExtractClaims(response string, maxClaims int) []string {
	var sentences []string
	for _, s := range sentenceSplit.Split(response, -1) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) > 10 {
			sentences = append(sentences, s)
		}
	}

	seen := make(map[string]bool)
	var claims []string
	truncate := func(s string) string {
		r := []rune(s)
		if len(r) > 200 {
			return string(r[:200])
		}
		return s
	}
	collect := func(pattern *regexp.Regexp) bool {
		for _, s := range sentences {
			if seen[s] {
				continue
			}
			if pattern.MatchString(s) {
				claims = append(claims, truncate(s))
				seen[s] = true
				if len(claims) >= maxClaims {
					return true
				}
			}
		}
		return false
	}

	if collect(numberAssertionPattern) {
		return claims
	}
	if collect(conclusionPattern) {
		return claims
	}
	for _, s := range sentences {
		if seen[s] {
			continue
		}
		if riskKeywordPattern.MatchString(s) || opportunityPattern.MatchString(s) {
			claims = append(claims, truncate(s))
			seen[s] = true
			if len(claims) >= maxClaims {
				break
			}
		}
	}
	return claims
}

var (
	numberPattern      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	chineseWordPattern = regexp.MustCompile(`[\x{4e00}-\x{9fff}]{2,4}`)
)

// MarkAddressed splits pending claims into those still unaddressed and
// those the given response addressed, via keyword-overlap ratio against
// threshold. Grounded on claim_extractor.py's `mark_claims_addressed`.
func MarkAddressed(pending []string, response string, threshold float64) (stillPending, newlyAddressed []string) {
	for _, claim := range pending {
		numbers := numberPattern.FindAllString(claim, -1)
		words := chineseWordPattern.FindAllString(claim, -1)
		keywords := append(append([]string{}, numbers...), words...)

		if len(keywords) == 0 {
			stillPending = append(stillPending, claim)
			continue
		}

		matchCount := 0
		for _, kw := range keywords {
			if strings.Contains(response, kw) {
				matchCount++
			}
		}
		if float64(matchCount)/float64(len(keywords)) >= threshold {
			newlyAddressed = append(newlyAddressed, claim)
		} else {
			stillPending = append(stillPending, claim)
		}
	}
	return stillPending, newlyAddressed
}

// FormatRebuttalSection renders the mandatory-rebuttal block injected
// into the next speaker's prompt, naming claims they must address.
// Grounded on claim_extractor.py's `format_rebuttal_section`.
func FormatRebuttalSection(pendingClaims []string, opponent string) string {
	if len(pendingClaims) == 0 {
		return ""
	}
	if opponent == "" {
		opponent = "对方"
	}

	var claimsText strings.Builder
	for i, claim := range pendingClaims {
		fmt.Fprintf(&claimsText, "%d. %s\n", i+1, claim)
	}

	return fmt.Sprintf(`
═══════════════════════════════════════════════════════════════
【必答项 - 锁定回应】MANDATORY REBUTTAL
═══════════════════════════════════════════════════════════════

%s提出以下论点，你必须逐一回应：

%s
**回应要求**：
- 承认风险/观点（若合理）并说明应对策略
- 或反驳（必须有数据/逻辑支撑）
- 不得忽略任何一条

⚠️ 未明确回应的论点将被视为你承认其成立。

═══════════════════════════════════════════════════════════════
`, opponent, claimsText.String())
}
