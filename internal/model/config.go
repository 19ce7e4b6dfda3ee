package model

import (
	"runtime"
	"time"
)

// Classifier modes
const (
	ClassifierRules  = "rules"
	ClassifierRemote = "remote"
	ClassifierLLM    = "llm"
)

// Duty gates decide which importer-day flag makes an item dutiable
const (
	DutyGateDailyTotal  = "daily_total"  // Daily total exceeds the de-minimis threshold
	DutyGateRevenueRisk = "revenue_risk" // Split shipment whose daily total exceeds the threshold
)

// Config holds every run-wide setting of the pipeline
type Config struct {
	ConversionRate     float64 `yaml:"conversion_rate" mapstructure:"conversion_rate"`
	DeMinimisThreshold float64 `yaml:"de_minimis_threshold" mapstructure:"de_minimis_threshold"`
	DefaultDutyRate    float64 `yaml:"default_duty_rate" mapstructure:"default_duty_rate"`
	DutyGate           string  `yaml:"duty_gate" mapstructure:"duty_gate"`
	Workers            int     `yaml:"workers" mapstructure:"workers"`
	Catalog            string  `yaml:"catalog" mapstructure:"catalog"` // Optional YAML rule catalog override

	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// ClassifierConfig selects and tunes the Level 2 classification authority
type ClassifierConfig struct {
	Mode              string        `yaml:"mode" mapstructure:"mode"` // rules, remote, llm
	URL               string        `yaml:"url" mapstructure:"url"`
	AuthHeader        string        `yaml:"-" mapstructure:"auth_header"` // Never printed
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	Cache             bool          `yaml:"cache" mapstructure:"cache"`
	CacheDir          string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LLMConfig configures an LLM used as the classification authority
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls what the CLI writes
type OutputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	MetricsFile string `yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the documented defaults: INR to AED at 0.044,
// 1000 AED de-minimis, 5% fallback duty and rule-based classification.
func DefaultConfig() *Config {
	return &Config{
		ConversionRate:     0.044,
		DeMinimisThreshold: 1000,
		DefaultDutyRate:    0.05,
		DutyGate:           DutyGateDailyTotal,
		Workers:            runtime.NumCPU(),
		Classifier: ClassifierConfig{
			Mode:              ClassifierRules,
			Timeout:           5 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
			Cache:             true,
			CacheTTL:          24 * time.Hour,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 16,
		},
		Output: OutputConfig{
			Dir: "./customsgate-output",
		},
	}
}
