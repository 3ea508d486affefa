// Package agents implements the agent runtime: the tool-call loop
// every analyst, debater, and judge role is built from, plus the
// role-specific prompts and report-extraction wired onto it.
package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/marketsage/ashare-agents/config"
)

// Tier selects between the "quick" and "deep" model configured for the
// process (deep backs consolidation and judges, quick backs analysts
// and debaters).
type Tier int

const (
	Quick Tier = iota
	Deep
)

// NewChatModel builds the provider-specific chat model for tier,
// following the LLMConfig.Provider selection.
// An empty provider selects DeepSeek; any provider other than openai,
// openrouter and deepseek uses the openai client against BackendURL.
func NewChatModel(ctx context.Context, cfg *config.Config, tier Tier) (model.ChatModel, error) {
	modelName := cfg.LLM.QuickThinkLLM
	if tier == Deep {
		modelName = cfg.LLM.DeepThinkLLM
	}

	switch cfg.LLM.Provider {
	case "openai", "openrouter":
		apiKey := cfg.LLM.OpenAIAPIKey
		if cfg.LLM.Provider == "openrouter" {
			apiKey = cfg.LLM.OpenRouterAPIKey
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  apiKey,
			Model:   modelName,
			BaseURL: cfg.LLM.BackendURL,
		})
	case "deepseek", "":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  cfg.LLM.DeepSeekAPIKey,
			Model:   modelName,
			BaseURL: cfg.LLM.BackendURL,
		})
	default:
		// anthropic/google/dashscope/ollama all speak an
		// OpenAI-compatible chat-completions surface through
		// cfg.LLM.BackendURL; reuse the openai client rather than
		// pulling in a fourth SDK for the same wire protocol.
		apiKey := cfg.LLM.AnthropicAPIKey
		switch cfg.LLM.Provider {
		case "google":
			apiKey = cfg.LLM.GoogleAPIKey
		case "dashscope":
			apiKey = cfg.LLM.DashscopeAPIKey
		case "ollama":
			apiKey = "ollama"
		}
		if cfg.LLM.BackendURL == "" {
			return nil, fmt.Errorf("llm provider %q requires backend_url", cfg.LLM.Provider)
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  apiKey,
			Model:   modelName,
			BaseURL: cfg.LLM.BackendURL,
		})
	}
}
