// Package classify implements Level 2: assigning a six-digit tariff code to
// each line item. The authority is chosen once per run: the rule catalog, a
// remote classification service, or an LLM.
package classify

import (
	"context"
	"strconv"
	"strings"

	"github.com/ppiankov/customsgate/internal/model"
)

// DefaultChapter is used when a code's first two characters are not a number
const DefaultChapter = 99

// Result is the outcome of classifying one goods description
type Result struct {
	Code   string
	Status model.ClassificationStatus
	Err    error // Set when a service call failed and the sentinel was assigned
}

// Classifier assigns a tariff code to a goods description. Implementations
// never fail: problems degrade to the unclassified sentinel.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) Result
}

// ItemText joins category, title and description into the lower-cased text
// both classification and risk checks run against
func ItemText(item *model.LineItem) string {
	return strings.ToLower(item.Category + " " + item.Title + " " + item.Description)
}

// Chapter returns the numeric value of the code's first two characters
func Chapter(code string) int {
	if len(code) < 2 {
		return DefaultChapter
	}
	ch, err := strconv.Atoi(code[:2])
	if err != nil || ch < 0 {
		return DefaultChapter
	}
	return ch
}

// Apply classifies an item and records code, status and chapter on it
func Apply(ctx context.Context, c Classifier, item *model.LineItem) Result {
	res := c.Classify(ctx, ItemText(item))
	item.HSCode = res.Code
	item.ClassificationStatus = res.Status
	item.Chapter = Chapter(res.Code)
	return res
}

func unclassified(status model.ClassificationStatus, err error) Result {
	return Result{Code: model.UnclassifiedCode, Status: status, Err: err}
}

// normalizeCode strips separators a service may put in a code ("6205.20")
func normalizeCode(code string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(code) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
