package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process-wide configuration, populated by loading a .env
// file (if present) and then binding environment variables onto the
// envconfig-tagged fields below.
type Config struct {
	Runtime RuntimeConfig `envconfig:""`
	LLM     LLMConfig     `envconfig:"LLM"`
	Graph   GraphConfig   `envconfig:"GRAPH"`
	Memory  MemoryConfig  `envconfig:"MEMORY"`
	Data    DataConfig    `envconfig:"DATA"`
}

// RuntimeConfig controls artifact and cache locations.
type RuntimeConfig struct {
	ProjectDir   string `envconfig:"PROJECT_DIR" required:"false"`
	ResultsDir   string `envconfig:"RESULTS_DIR" default:"results"`
	DataCacheDir string `envconfig:"DATA_CACHE_DIR" default:"data/cache"`
	CacheEnabled bool   `envconfig:"CACHE_ENABLED" default:"true"`
	Debug        bool   `envconfig:"DEBUG" default:"false"`
}

// LLMConfig selects the model provider used by the agent runtime.
//
// DeepThinkLLM backs consolidation and the research/risk judges;
// QuickThinkLLM backs analysts and debaters.
type LLMConfig struct {
	Provider      string `envconfig:"PROVIDER" default:"deepseek"`
	DeepThinkLLM  string `envconfig:"DEEP_THINK_LLM" default:"deepseek-reasoner"`
	QuickThinkLLM string `envconfig:"QUICK_THINK_LLM" default:"deepseek-chat"`
	BackendURL    string `envconfig:"BACKEND_URL" default:"https://api.deepseek.com"`

	DeepSeekAPIKey   string `envconfig:"DEEPSEEK_API_KEY" required:"false"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY" required:"false"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY" required:"false"`
	GoogleAPIKey     string `envconfig:"GOOGLE_API_KEY" required:"false"`
	DashscopeAPIKey  string `envconfig:"DASHSCOPE_API_KEY" required:"false"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY" required:"false"`
	OllamaBaseURL    string `envconfig:"OLLAMA_BASE_URL" required:"false" default:"http://localhost:11434"`
}

// GraphConfig bounds debate/risk iteration and graph recursion
// ("max_debate_rounds", "max_risk_discuss_rounds", "max_recur_limit").
type GraphConfig struct {
	MaxDebateRounds      int  `envconfig:"MAX_DEBATE_ROUNDS" default:"1"`
	MaxRiskDiscussRounds int  `envconfig:"MAX_RISK_DISCUSS_ROUNDS" default:"1"`
	MaxRecurLimit        int  `envconfig:"MAX_RECUR_LIMIT" default:"100"`
	OnlineTools          bool `envconfig:"ONLINE_TOOLS" default:"true"`
}

// MemoryConfig points at the decision-memory backing store and the
// embedding provider used to index it. DSN is a PostgreSQL connection
// string by default; a "sqlite://" prefix selects the single-file
// SQLite store instead. An empty or invalid embedding configuration
// puts the store into disabled mode rather than failing the run.
type MemoryConfig struct {
	DSN               string `envconfig:"DSN" required:"false"`
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"dashscope"`
	EmbeddingAPIKey   string `envconfig:"EMBEDDING_API_KEY" required:"false"`
	EmbeddingModel    string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-v2"`
	EmbeddingBaseURL  string `envconfig:"EMBEDDING_BASE_URL" required:"false"`
}

// DataConfig carries credentials for the A-share data providers and the
// non-A-share fallback paths.
type DataConfig struct {
	TushareToken        string `envconfig:"TUSHARE_TOKEN" required:"false"`
	LongportAppKey      string `envconfig:"LONGPORT_APP_KEY" required:"false"`
	LongportAppSecret   string `envconfig:"LONGPORT_APP_SECRET" required:"false"`
	LongportAccessToken string `envconfig:"LONGPORT_ACCESS_TOKEN" required:"false"`
}

// Load reads a .env file if present, then binds environment variables
// onto a Config, applying defaults and resolving relative directories
// against the current working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}

	if cfg.Runtime.ProjectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project dir: %w", err)
		}
		cfg.Runtime.ProjectDir = wd
	}
	if !filepath.IsAbs(cfg.Runtime.ResultsDir) {
		cfg.Runtime.ResultsDir = filepath.Join(cfg.Runtime.ProjectDir, cfg.Runtime.ResultsDir)
	}
	if !filepath.IsAbs(cfg.Runtime.DataCacheDir) {
		cfg.Runtime.DataCacheDir = filepath.Join(cfg.Runtime.ProjectDir, cfg.Runtime.DataCacheDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the invariants placed on configuration values
// (round bounds, a resolvable LLM provider name).
func (c *Config) Validate() error {
	if c.Graph.MaxDebateRounds < 1 || c.Graph.MaxDebateRounds > 10 {
		return fmt.Errorf("max_debate_rounds must be between 1 and 10")
	}
	if c.Graph.MaxRiskDiscussRounds < 1 || c.Graph.MaxRiskDiscussRounds > 10 {
		return fmt.Errorf("max_risk_discuss_rounds must be between 1 and 10")
	}
	if c.Graph.MaxRecurLimit < 1 {
		return fmt.Errorf("max_recur_limit must be positive")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "google", "dashscope", "ollama", "openrouter", "deepseek":
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLM.Provider)
	}
	return nil
}

// EnsureDirectories creates the results and cache directories if absent.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Runtime.ResultsDir, c.Runtime.DataCacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MemoryEnabled reports whether enough configuration is present to
// attempt a real decision-memory store; the store itself still falls
// back to disabled mode if the embedding API key turns out invalid.
func (c *Config) MemoryEnabled() bool {
	return c.Memory.DSN != ""
}
