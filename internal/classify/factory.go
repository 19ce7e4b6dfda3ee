package classify

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/customsgate/internal/cache"
	"github.com/ppiankov/customsgate/internal/catalog"
	"github.com/ppiankov/customsgate/internal/llm"
	"github.com/ppiankov/customsgate/internal/model"
	"github.com/ppiankov/customsgate/internal/worker"
)

// New builds the classifier selected by cfg.Classifier.Mode
func New(cfg *model.Config, cat *catalog.Catalog) (Classifier, error) {
	cc := cfg.Classifier

	switch cc.Mode {
	case "", model.ClassifierRules:
		return NewRuleClassifier(cat.Rules), nil

	case model.ClassifierRemote:
		slog.Debug("using remote classifier", "url", cc.URL, "rps", cc.RequestsPerSecond, "cache", cc.Cache)
		return NewRemoteClassifier(RemoteOptions{
			URL:        cc.URL,
			AuthHeader: cc.AuthHeader,
			Timeout:    cc.Timeout,
			Cache:      cache.New(cc),
			Limiter:    newLimiter(cc),
			HTTPProxy:  cc.HTTPProxy,
			HTTPSProxy: cc.HTTPSProxy,
			NoProxy:    cc.NoProxy,
		})

	case model.ClassifierLLM:
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cc))
		if err != nil {
			return nil, fmt.Errorf("llm classifier: %w", err)
		}
		slog.Debug("using llm classifier", "provider", provider.Name(), "model", cfg.LLM.Model)
		return NewLLMClassifier(provider, cfg.LLM.Model, cache.New(cc), newLimiter(cc)), nil

	default:
		return nil, fmt.Errorf("unknown classifier mode: %s (supported: rules, remote, llm)", cc.Mode)
	}
}

// newLimiter returns nil when throttling is disabled so callers skip it
func newLimiter(cc model.ClassifierConfig) RateLimiter {
	if cc.RequestsPerSecond <= 0 {
		return nil
	}
	return worker.NewLimiter(cc.RequestsPerSecond, cc.Burst)
}
