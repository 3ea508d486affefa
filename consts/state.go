package consts

// Run lifecycle states, mirrored in internal/control.
const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Decision type taxonomy.
const (
	DecisionStrongBuy  = "STRONG_BUY"
	DecisionBuy        = "BUY"
	DecisionHold       = "HOLD"
	DecisionReduce     = "REDUCE"
	DecisionSell       = "SELL"
	DecisionStrongSell = "STRONG_SELL"
)

// Outcome categories for decision memory records.
const (
	OutcomeProfit     = "profit"
	OutcomeLoss       = "loss"
	OutcomeBreakeven  = "breakeven"
)

// Tool error taxonomy.
const (
	ErrNetwork      = "NETWORK"
	ErrTimeout      = "TIMEOUT"
	ErrRateLimit    = "RATE_LIMIT"
	ErrAuth         = "AUTH"
	ErrNotFound     = "NOT_FOUND"
	ErrInvalidParam = "INVALID_PARAM"
	ErrServer       = "SERVER"
	ErrUnknown      = "UNKNOWN"
)

// Progress event types surfaced by the run controller.
const (
	EventSectionStart    = "section_start"
	EventSectionComplete = "section_complete"
	EventTool            = "tool"
	EventThinking        = "thinking"
	EventProgress        = "progress"
	EventAnalysisStart   = "analysis_start"
	EventAnalysisComplete = "analysis_complete"
	EventError           = "error"
)
