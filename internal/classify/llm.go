package classify

import (
	"context"
	"fmt"

	"github.com/ppiankov/customsgate/internal/cache"
	"github.com/ppiankov/customsgate/internal/llm"
	"github.com/ppiankov/customsgate/internal/model"
)

// LLMClassifier uses a language model as the classification authority
type LLMClassifier struct {
	provider llm.Provider
	model    string
	cache    cache.Cache
	limiter  RateLimiter
}

// NewLLMClassifier wraps a provider. Cache and limiter may be nil.
func NewLLMClassifier(provider llm.Provider, modelName string, c cache.Cache, limiter RateLimiter) *LLMClassifier {
	return &LLMClassifier{
		provider: provider,
		model:    modelName,
		cache:    c,
		limiter:  limiter,
	}
}

// Name returns the classifier name
func (c *LLMClassifier) Name() string {
	return model.ClassifierLLM + ":" + c.provider.Name()
}

// Classify asks the model for a code. A model that answers with the
// sentinel itself yields NO_MATCH so the item is reviewed by hand.
func (c *LLMClassifier) Classify(ctx context.Context, text string) Result {
	if c.cache != nil {
		if e, ok := c.cache.Lookup(c.Name(), text); ok {
			return Result{Code: e.Code, Status: e.Status}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "llm://"+c.provider.Name()); err != nil {
			return unclassified(model.StatusAPIError, &model.ClassificationServiceError{Service: c.Name(), Err: err})
		}
	}

	resp, err := c.provider.ClassifyGoods(ctx, llm.ClassifyRequest{Description: text, Model: c.model})
	if err != nil {
		return unclassified(model.StatusAPIError, &model.ClassificationServiceError{Service: c.Name(), Err: err})
	}
	if len(resp.HSCode) != 6 {
		return unclassified(model.StatusAPIError, &model.ClassificationServiceError{
			Service: c.Name(),
			Err:     fmt.Errorf("invalid hs_code %q", resp.HSCode),
		})
	}

	res := c.result(resp.HSCode)
	if c.cache != nil {
		_ = c.cache.Store(c.Name(), text, cache.Entry{Code: res.Code, Status: res.Status})
	}
	return res
}

func (c *LLMClassifier) result(code string) Result {
	if code == model.UnclassifiedCode {
		return unclassified(model.StatusNoMatch, nil)
	}
	return Result{Code: code, Status: model.StatusAPIMatch}
}
