// Package llm lets a language model act as the tariff classification
// authority. Providers answer with a six-digit HS code for a goods
// description; anything else is treated as a failed call.
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// ClassifyGoods asks the model for the HS code of a goods description
	ClassifyGoods(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the input for one classification
type ClassifyRequest struct {
	// Description is the lower-cased category, title and description text
	Description string

	// Prompt overrides the default prompt when set
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ClassifyResponse contains the model's answer
type ClassifyResponse struct {
	// HSCode is the six-digit code found in the answer
	HSCode string

	// Raw is the untrimmed model output
	Raw string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 16,
	}
}

const systemPrompt = "You are a customs tariff classifier. Reply with exactly one six-digit Harmonized System subheading code and nothing else."

// BuildPrompt constructs the default classification prompt
func BuildPrompt(description string) string {
	return fmt.Sprintf(`Classify the following e-commerce goods declaration under the Harmonized System.

Goods: %s

Rules:
1. Answer with the six-digit HS subheading only, digits without dots (e.g. 620520).
2. If the goods cannot be classified, answer 999999.`, strings.TrimSpace(description))
}

var hsCodePattern = regexp.MustCompile(`\b(\d{4})\.?(\d{2})\b`)

// extractHSCode finds the first six-digit code in a model answer,
// accepting the dotted "6205.20" form
func extractHSCode(text string) (string, error) {
	m := hsCodePattern.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("no HS code in model answer %q", truncate(text, 80))
	}
	return m[1] + m[2], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
