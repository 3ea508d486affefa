// Package graph wires the agent roles of internal/agents into the
// directed analysis graph: a fixed analyst chain, a bull/bear
// alternation with a count-based terminator, a three-way risk rotation
// with its own terminator, and a final consolidation step, all driven
// through compose.Graph.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/shopspring/decimal"

	"github.com/marketsage/ashare-agents/config"
	"github.com/marketsage/ashare-agents/consts"
	"github.com/marketsage/ashare-agents/internal/agents"
	"github.com/marketsage/ashare-agents/internal/debate"
	"github.com/marketsage/ashare-agents/internal/memory"
	"github.com/marketsage/ashare-agents/internal/models"
	"github.com/marketsage/ashare-agents/internal/signal"
	"github.com/marketsage/ashare-agents/internal/tooling/dataflows"
	"github.com/marketsage/ashare-agents/internal/validation"
)

// Orchestrator owns the two model tiers,
// the shared memory store, the direct tushare client the validation
// layer reads numeric fundamentals from, and the configured round
// limits, and builds the compiled analysis graph from them.
type Orchestrator struct {
	quick   *agents.Runtime
	deep    *agents.Runtime
	mem     memory.Store
	tushare *dataflows.TushareClient

	maxDebateRounds int
	maxRiskRounds   int
	recursionLimit  int
}

// NewOrchestrator builds an Orchestrator from the two model-tier
// runtimes (quick backs analysts/debaters, deep backs consolidation and
// judges), the decision memory store, the tushare client the
// validation layer dispatches directly (independent of whatever tools
// the LLM analyst itself calls), and the configured round limits.
func NewOrchestrator(quick, deep *agents.Runtime, mem memory.Store, tushare *dataflows.TushareClient, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		quick:           quick,
		deep:            deep,
		mem:             mem,
		tushare:         tushare,
		maxDebateRounds: cfg.Graph.MaxDebateRounds,
		maxRiskRounds:   cfg.Graph.MaxRiskDiscussRounds,
		recursionLimit:  cfg.Graph.MaxRecurLimit,
	}
}

// Build compiles the full analysis graph: START -> analyst chain ->
// bull/bear alternation -> research_manager -> trader -> momentum
// debater -> three-way risk rotation -> risk_judge -> consolidation ->
// END. The graph's I/O type is *models.RunState itself: every node
// mutates the state it receives and passes the same pointer on, so no
// separate local-state plumbing is needed here.
func (o *Orchestrator) Build(ctx context.Context) (compose.Runnable[*models.RunState, *models.RunState], error) {
	g := compose.NewGraph[*models.RunState, *models.RunState]()

	nodes := map[string]func(context.Context, *models.RunState, ...any) (*models.RunState, error){
		consts.MarketAnalyst:       o.marketAnalystNode,
		consts.SocialAnalyst:       o.sentimentAnalystNode,
		consts.NewsAnalyst:         o.newsAnalystNode,
		consts.FundamentalsAnalyst: o.fundamentalsAnalystNode,
		consts.ChinaMarketAnalyst:  o.chinaMarketAnalystNode,
		consts.BullResearcher:      o.bullResearcherNode,
		consts.BearResearcher:      o.bearResearcherNode,
		consts.ResearchManager:     o.researchManagerNode,
		consts.Trader:              o.traderNode,
		consts.MomentumDebater:     o.momentumDebaterNode,
		consts.ValueDebater:        o.valueDebaterNode,
		consts.RiskManagerDebater:  o.riskManagerDebaterNode,
		consts.RiskJudge:           o.riskJudgeNode,
		consts.Consolidation:       o.consolidationNode,
	}
	for name, fn := range nodes {
		if err := g.AddLambdaNode(name, compose.InvokableLambdaWithOption(fn)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
	}

	outMap := map[string]bool{compose.END: true}
	for name := range nodes {
		outMap[name] = true
	}

	branchedNodes := []string{
		consts.MarketAnalyst, consts.SocialAnalyst, consts.NewsAnalyst, consts.FundamentalsAnalyst,
		consts.ChinaMarketAnalyst, consts.BullResearcher, consts.BearResearcher, consts.ResearchManager,
		consts.Trader, consts.MomentumDebater, consts.ValueDebater, consts.RiskManagerDebater,
		consts.RiskJudge, consts.Consolidation,
	}
	for _, name := range branchedNodes {
		if err := g.AddBranch(name, compose.NewGraphBranch(o.handOff, outMap)); err != nil {
			return nil, fmt.Errorf("add branch from %s: %w", name, err)
		}
	}

	if err := g.AddEdge(compose.START, consts.MarketAnalyst); err != nil {
		return nil, fmt.Errorf("add start edge: %w", err)
	}

	return g.Compile(ctx,
		compose.WithGraphName("ashare-analysis-graph"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
		compose.WithMaxRunSteps(o.effectiveRecursionLimit()),
	)
}

func (o *Orchestrator) effectiveRecursionLimit() int {
	if o.recursionLimit <= 0 {
		return agents.GraphRecursionLimit
	}
	return o.recursionLimit
}

// handOff is the single routing function every node branches through,
// deciding the next node from state.Sender and the debate-round
// counters against maxDebateRounds/maxRiskRounds.
func (o *Orchestrator) handOff(ctx context.Context, state *models.RunState) (string, error) {
	switch state.Sender {
	case consts.MarketAnalyst:
		return consts.SocialAnalyst, nil
	case consts.SocialAnalyst:
		return consts.NewsAnalyst, nil
	case consts.NewsAnalyst:
		return consts.FundamentalsAnalyst, nil
	case consts.FundamentalsAnalyst:
		return consts.ChinaMarketAnalyst, nil
	case consts.ChinaMarketAnalyst:
		return consts.BullResearcher, nil

	case consts.BullResearcher, consts.BearResearcher:
		if debate.InvestmentDebateDone(state.InvestmentDebateState, o.maxDebateRounds) {
			return consts.ResearchManager, nil
		}
		if debate.NextInvestmentSpeaker(state.InvestmentDebateState) == debate.Bull {
			return consts.BullResearcher, nil
		}
		return consts.BearResearcher, nil

	case consts.ResearchManager:
		return consts.Trader, nil
	case consts.Trader:
		return consts.MomentumDebater, nil

	case consts.MomentumDebater, consts.ValueDebater, consts.RiskManagerDebater:
		if debate.RiskDebateDone(state.RiskDebateState, o.maxRiskRounds) {
			return consts.RiskJudge, nil
		}
		switch debate.NextRiskSpeaker(state.RiskDebateState) {
		case debate.Momentum:
			return consts.MomentumDebater, nil
		case debate.Value:
			return consts.ValueDebater, nil
		default:
			return consts.RiskManagerDebater, nil
		}

	case consts.RiskJudge:
		return consts.Consolidation, nil
	case consts.Consolidation:
		return compose.END, nil
	default:
		return compose.END, nil
	}
}

func analystSeed(state *models.RunState) []*schema.Message {
	return []*schema.Message{schema.UserMessage(fmt.Sprintf("请对 %s 展开分析。", state.Ticker))}
}

func (o *Orchestrator) runAnalyst(ctx context.Context, state *models.RunState, role agents.Role, setReport func(*models.RunState, string)) (*models.RunState, error) {
	today := tradeDate(state)
	result, err := o.quick.Run(ctx, role, state.Ticker, today, analystSeed(state))
	if err != nil {
		setReport(state, fmt.Sprintf("（数据获取失败，低置信度）%v", err))
	} else {
		setReport(state, result.Report)
		state.Messages = append(state.Messages, result.Trail...)
	}
	state.Sender = role.Name
	return state, nil
}

func tradeDate(state *models.RunState) time.Time {
	if t, err := time.Parse("2006-01-02", state.TradeDate); err == nil {
		return t
	}
	return time.Now()
}

func (o *Orchestrator) marketAnalystNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	return o.runAnalyst(ctx, state, agents.MarketAnalystRole(), func(s *models.RunState, r string) { s.MarketReport = r })
}

func (o *Orchestrator) sentimentAnalystNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	return o.runAnalyst(ctx, state, agents.SentimentAnalystRole(), func(s *models.RunState, r string) { s.SentimentReport = r })
}

func (o *Orchestrator) newsAnalystNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	return o.runAnalyst(ctx, state, agents.NewsAnalystRole(), func(s *models.RunState, r string) { s.NewsReport = r })
}

func (o *Orchestrator) fundamentalsAnalystNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	s, err := o.runAnalyst(ctx, state, agents.FundamentalsAnalystRole(), func(s *models.RunState, r string) { s.FundamentalsReport = r })
	if err != nil {
		return s, err
	}

	// The validation layer needs real numbers, not whatever the report
	// text happens to state about itself, so the snapshot is fetched
	// directly from tushare here rather than parsed out of s.FundamentalsReport.
	snap := o.fetchValuationSnapshot(ctx, s.Ticker)
	if snap.currentPrice > 0 {
		s.CurrentPrice = decimal.NewFromFloat(snap.currentPrice)
	}

	warnings, _, _ := validation.CheckValuation(s.FundamentalsReport, snap.currentPrice, snap.stats)
	s.ValidationWarnings = append(s.ValidationWarnings, warnings...)

	industry := detectIndustry(s.FundamentalsReport)
	if validation.ShouldCheckDividend(industry, snap.dividendYield) {
		targetPrice, _ := validation.ExtractTargetPrice(s.FundamentalsReport)
		s.ValidationWarnings = append(s.ValidationWarnings,
			validation.CheckDividend(snap.ttmDividend, snap.currentPrice, snap.dividendYield, targetPrice)...)
	}

	return s, nil
}

func (o *Orchestrator) chinaMarketAnalystNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	s, err := o.runAnalyst(ctx, state, agents.ChinaMarketAnalystRole(), func(s *models.RunState, r string) { s.ChinaMarketReport = r })
	if err != nil {
		return s, err
	}

	// Concept-relevance scoring runs once both the news and macro
	// reports are available; only market-association-tier concepts
	// (no official classification, no investor-disclosure mention)
	// surface as consistency warnings.
	claims := extractConceptClaims(s.NewsReport+"\n"+s.ChinaMarketReport, s.FundamentalsReport)
	for _, score := range validation.ScoreConcepts(claims) {
		if score.Source == validation.SourceMarketAssociation {
			s.ValidationWarnings = append(s.ValidationWarnings, fmt.Sprintf(
				"题材校验：%s 仅见于市场传闻，未见官方行业分类或投资者披露佐证（评分%d/100）",
				score.Concept, score.Score))
		}
	}
	return s, nil
}

// analystBundle renders the five analyst reports as the shared context
// every downstream node's seed message carries.
func analystBundle(state *models.RunState) string {
	return fmt.Sprintf(
		"## 市场技术分析\n%s\n\n## 情绪分析\n%s\n\n## 新闻分析\n%s\n\n## 基本面分析\n%s\n\n## 宏观与政策分析\n%s\n%s",
		state.MarketReport, state.SentimentReport, state.NewsReport, state.FundamentalsReport, state.ChinaMarketReport,
		validation.FormatWarnings(state.ValidationWarnings),
	)
}

func (o *Orchestrator) bullResearcherNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	return o.investmentDebateTurn(ctx, state, debate.Bull, agents.BullResearcherRole())
}

func (o *Orchestrator) bearResearcherNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	return o.investmentDebateTurn(ctx, state, debate.Bear, agents.BearResearcherRole())
}

func (o *Orchestrator) investmentDebateTurn(ctx context.Context, state *models.RunState, speaker string, role agents.Role) (*models.RunState, error) {
	if state.InvestmentDebateState == nil {
		state.InvestmentDebateState = models.NewInvestDebateState()
	}
	ds := state.InvestmentDebateState

	rebuttal := debate.FormatRebuttalSection(ds.PendingRebuttals, debate.Opponent(speaker))
	seed := []*schema.Message{schema.UserMessage(fmt.Sprintf(
		"以下是本股票的综合分析资料：\n\n%s\n\n当前辩论记录：\n%s\n%s",
		analystBundle(state), debate.SummarizeHistory(ds.History), rebuttal))}

	today := tradeDate(state)
	result, err := o.quick.Run(ctx, role, state.Ticker, today, seed)
	utterance := role.Name
	if err != nil {
		utterance = fmt.Sprintf("（生成失败：%v）", err)
	} else {
		utterance = result.Report
		state.Messages = append(state.Messages, result.Trail...)
	}

	debate.UpdateInvestmentTurn(ds, speaker, utterance)
	state.Sender = role.Name
	return state, nil
}

func (o *Orchestrator) researchManagerNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	ds := state.InvestmentDebateState
	seed := []*schema.Message{schema.UserMessage(fmt.Sprintf(
		"以下是多空双方的完整辩论记录，请裁决并给出团队投资计划：\n\n%s\n\n综合分析资料：\n%s",
		ds.History, analystBundle(state)))}

	result, err := o.deep.Run(ctx, agents.ResearchManagerRole(), state.Ticker, tradeDate(state), seed)
	if err != nil {
		ds.JudgeDecision = fmt.Sprintf("（裁决生成失败：%v）", err)
	} else {
		ds.JudgeDecision = result.Report
		state.Messages = append(state.Messages, result.Trail...)
	}
	state.Sender = consts.ResearchManager
	return state, nil
}

func (o *Orchestrator) traderNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	seed := []*schema.Message{schema.UserMessage(fmt.Sprintf(
		"研究经理的投资计划：\n%s\n\n综合分析资料：\n%s",
		state.InvestmentDebateState.JudgeDecision, analystBundle(state)))}

	result, err := o.quick.Run(ctx, agents.TraderRole(), state.Ticker, tradeDate(state), seed)
	if err != nil {
		state.TraderInvestmentPlan = fmt.Sprintf("（交易计划生成失败：%v）", err)
	} else {
		state.TraderInvestmentPlan = result.Report
		state.Messages = append(state.Messages, result.Trail...)
	}
	state.Sender = consts.Trader
	return state, nil
}

func (o *Orchestrator) riskDebateTurn(ctx context.Context, state *models.RunState, speaker string, role agents.Role) (*models.RunState, error) {
	if state.RiskDebateState == nil {
		state.RiskDebateState = models.NewRiskDebateState()
	}
	rs := state.RiskDebateState

	seed := []*schema.Message{schema.UserMessage(fmt.Sprintf(
		"交易员的交易计划：\n%s\n\n风险辩论记录：\n%s",
		state.TraderInvestmentPlan, debate.SummarizeHistory(rs.History)))}

	result, err := o.quick.Run(ctx, role, state.Ticker, tradeDate(state), seed)
	utterance := role.Name
	if err != nil {
		utterance = fmt.Sprintf("（生成失败：%v）", err)
	} else {
		utterance = result.Report
		state.Messages = append(state.Messages, result.Trail...)
	}

	debate.UpdateRiskTurn(rs, speaker, utterance)
	state.Sender = role.Name
	return state, nil
}

func (o *Orchestrator) momentumDebaterNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	return o.riskDebateTurn(ctx, state, debate.Momentum, agents.MomentumDebaterRole())
}

func (o *Orchestrator) valueDebaterNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	return o.riskDebateTurn(ctx, state, debate.Value, agents.ValueDebaterRole())
}

func (o *Orchestrator) riskManagerDebaterNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	return o.riskDebateTurn(ctx, state, debate.RiskMgr, agents.RiskManagerDebaterRole())
}

func (o *Orchestrator) riskJudgeNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	rs := state.RiskDebateState
	seed := []*schema.Message{schema.UserMessage(fmt.Sprintf(
		"交易员的交易计划：\n%s\n\n三方风险辩论完整记录：\n%s",
		state.TraderInvestmentPlan, rs.History))}

	result, err := o.deep.Run(ctx, agents.RiskJudgeRole(), state.Ticker, tradeDate(state), seed)
	if err != nil {
		rs.JudgeDecision = fmt.Sprintf("（风险裁决生成失败：%v）", err)
	} else {
		rs.JudgeDecision = result.Report
		state.Messages = append(state.Messages, result.Trail...)
	}
	state.Sender = consts.RiskJudge
	return state, nil
}

func (o *Orchestrator) consolidationNode(ctx context.Context, state *models.RunState, _ ...any) (*models.RunState, error) {
	reflection := o.reflection(ctx, state)
	state.PreviousDecisionReflection = reflection

	seed := []*schema.Message{schema.UserMessage(fmt.Sprintf(
		"综合分析资料：\n%s\n\n投资辩论裁决：\n%s\n\n交易计划：\n%s\n\n风险裁决：\n%s\n\n历史决策复盘：\n%s",
		analystBundle(state), state.InvestmentDebateState.JudgeDecision, state.TraderInvestmentPlan,
		state.RiskDebateState.JudgeDecision, reflection))}

	result, err := o.deep.Run(ctx, agents.ConsolidationRole(), state.Ticker, tradeDate(state), seed)
	if err != nil {
		state.ConsolidationReport = fmt.Sprintf("（综合报告生成失败：%v）", err)
		state.FinalTradeDecision = state.ConsolidationReport
	} else {
		state.ConsolidationReport = result.Report
		decisionType, confidence, _, _, _ := signal.ExtractDecision(result.Report)
		state.FinalTradeDecision = fmt.Sprintf("%s\n\n%s", result.Report, signal.FormatDecisionLine(decisionType, confidence))
		state.Messages = append(state.Messages, result.Trail...)
	}

	if o.mem != nil {
		record := signal.BuildDecisionRecord(state.Ticker, state.TradeDate, state.ConsolidationReport, state.FinalTradeDecision, analystBundle(state), state.CurrentPrice)
		if _, err := o.mem.AddOrUpdate(ctx, record); err != nil {
			state.ValidationWarnings = append(state.ValidationWarnings, fmt.Sprintf("决策记忆写入失败：%v", err))
		}
	}

	state.Sender = consts.Consolidation
	return state, nil
}
