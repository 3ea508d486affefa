package graph

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/marketsage/ashare-agents/internal/models"
)

// decisionVerdict is the outcome of scoring one prior decision against
// the realised price move since it was made.
type decisionVerdict struct {
	emoji   string
	verdict string
	score   int
	lessons string
	focus   string
}

// evaluateDecision scores decisionType's correctness against
// priceChangePct, the percentage move from the decision's entry price
// to the current price. Thresholds are decision-type specific: a BUY
// is graded on upside captured, a SELL/REDUCE on downside avoided, a
// HOLD on whether staying put was the right call in a quiet or moving
// market.
func evaluateDecision(decisionType string, priceChangePct float64) decisionVerdict {
	switch decisionType {
	case models.DecisionBuy, models.DecisionStrongBuy:
		switch {
		case priceChangePct > 5:
			score := 8
			if priceChangePct > 10 {
				score = 9
			}
			return decisionVerdict{"✅", "决策正确，买入获利", score,
				"趋势与基本面判断方法有效，可在同类情形下延续当前方法论。",
				"跟踪持仓标的的量价与基本面变化，关注获利了结节奏。"}
		case priceChangePct > 0:
			return decisionVerdict{"✅", "决策正确，小幅获利", 7,
				"方向判断正确，但涨幅有限，可复盘买入时机与仓位是否可优化。",
				"关注后续催化剂是否足以支撑进一步上涨。"}
		case priceChangePct > -5:
			return decisionVerdict{"⚠️", "决策中性，小幅亏损", 5,
				"买入逻辑尚未被证伪，短期波动可能源于大盘或情绪扰动。",
				"复核基本面假设是否仍然成立，设置好止损位。"}
		default:
			score := 2
			if priceChangePct > -10 {
				score = 3
			}
			return decisionVerdict{"❌", "决策失误，明显亏损", score,
				"买入逻辑可能存在偏差，需复盘分析资料的关键假设。",
				"检查止损纪律是否被严格执行，避免亏损进一步扩大。"}
		}

	case models.DecisionSell, models.DecisionStrongSell, models.DecisionReduce:
		switch {
		case priceChangePct < -5:
			score := 8
			if priceChangePct < -10 {
				score = 9
			}
			return decisionVerdict{"✅", "决策正确，成功规避下跌", score,
				"风险识别及时，卖出时机把握得当。",
				"关注是否存在更优的重新买入时点。"}
		case priceChangePct < 0:
			return decisionVerdict{"✅", "决策正确，规避小幅下跌", 7,
				"方向判断正确，规避了下行风险。",
				"留意标的是否已消化利空，评估重新介入的条件。"}
		case priceChangePct < 5:
			return decisionVerdict{"⚠️", "决策偏保守，错失小幅上涨", 5,
				"风险偏好可能偏保守，错失了小幅上涨机会。",
				"复核卖出理由是否仍然成立。"}
		default:
			score := 2
			if priceChangePct < 10 {
				score = 3
			}
			return decisionVerdict{"❌", "决策失误，错失上涨", score,
				"卖出理由可能已被后续走势证伪，需复盘风险判断的关键假设。",
				"评估是否需要调整风险评估模型的权重。"}
		}

	default: // HOLD
		switch {
		case math.Abs(priceChangePct) < 3:
			return decisionVerdict{"✅", "决策正确，震荡行情持有", 7,
				"震荡行情下持有降低了交易成本，判断合理。",
				"继续观察是否出现明确的方向性信号。"}
		case priceChangePct > 5:
			return decisionVerdict{"⚠️", "持有正确但错失加仓机会", 6,
				"方向判断正确，但仓位控制偏保守。",
				"复核加仓条件，避免过度保守错失收益。"}
		default:
			return decisionVerdict{"⚠️", "持有决策待商榷", 4,
				"震荡或下行行情中持有未能规避损失，需复核持有理由。",
				"评估是否应设置更明确的止损/止盈条件。"}
		}
	}
}

// reflection renders the Markdown comparison block against the most
// recent prior decision for this ticker, scoring that decision's
// correctness (1-10) against the realised price move since then.
// Returns "" when no memory store is configured or no prior decision
// exists.
func (o *Orchestrator) reflection(ctx context.Context, state *models.RunState) string {
	if o.mem == nil {
		return ""
	}
	matches, err := o.mem.Query(ctx, state.Ticker, math.MaxInt32, state.TradeDate)
	if err != nil {
		return ""
	}
	var m models.MemoryMatch
	found := false
	for _, candidate := range matches {
		if candidate.Ticker != state.Ticker || candidate.DecisionDate >= state.TradeDate {
			continue
		}
		if !found || candidate.DecisionDate > m.DecisionDate {
			m, found = candidate, true
		}
	}
	if !found {
		return ""
	}

	actual := "尚无"
	if m.ActualReturn != nil {
		actual = m.ActualReturn.String() + "%"
	}

	if m.EntryPrice.IsZero() || state.CurrentPrice.IsZero() {
		return fmt.Sprintf(
			"## 历史决策复盘\n\n上一次决策日期：%s\n决策：%s（置信度 %s）\n实际收益：%s\n结果评估：价格数据不足，无法计算复盘评分\n",
			m.DecisionDate, m.DecisionType, m.Confidence.String(), actual)
	}

	priceChangePct := state.CurrentPrice.Sub(m.EntryPrice).Div(m.EntryPrice).Mul(decimal.NewFromInt(100))
	v := evaluateDecision(m.DecisionType, priceChangePct.InexactFloat64())

	return fmt.Sprintf(
		"## 历史决策复盘\n\n"+
			"### 决策信息\n上一次决策日期：%s\n决策：%s（置信度 %s）\n决策时价格：%.2f 元\n\n"+
			"### 实际表现\n当前价格：%.2f 元\n区间涨跌幅：%+.2f%%\n实际收益：%s\n\n"+
			"### 决策评估\n%s %s\n复盘评分：%d/10\n\n"+
			"### 经验教训\n%s\n\n"+
			"### 本次分析建议关注\n%s\n",
		m.DecisionDate, m.DecisionType, m.Confidence.String(), m.EntryPrice.InexactFloat64(),
		state.CurrentPrice.InexactFloat64(), priceChangePct.InexactFloat64(), actual,
		v.emoji, v.verdict, v.score,
		v.lessons, v.focus)
}
