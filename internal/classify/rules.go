package classify

import (
	"context"
	"strings"

	"github.com/ppiankov/customsgate/internal/model"
)

// RuleClassifier matches text against an ordered pattern catalog
type RuleClassifier struct {
	rules []model.ClassificationRule
}

// NewRuleClassifier creates a classifier over compiled catalog rules
func NewRuleClassifier(rules []model.ClassificationRule) *RuleClassifier {
	return &RuleClassifier{rules: rules}
}

// Name returns the classifier name
func (c *RuleClassifier) Name() string {
	return model.ClassifierRules
}

// Classify returns the code of the first matching rule, or the sentinel
// with NO_MATCH
func (c *RuleClassifier) Classify(_ context.Context, text string) Result {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		if rule.Regexp != nil && rule.Regexp.MatchString(lower) {
			return Result{Code: rule.HSCode, Status: model.StatusRuleMatch}
		}
	}
	return unclassified(model.StatusNoMatch, nil)
}
