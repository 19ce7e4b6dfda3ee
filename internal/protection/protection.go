// Package protection implements Level 4: flagging dangerous and controlled
// goods against the ordered risk profile catalog, independent of revenue.
package protection

import (
	"strings"

	"github.com/ppiankov/customsgate/internal/model"
)

// Delimiter joins multiple fired codes and reasons
const Delimiter = "|"

// Assessment is the outcome of checking one item
type Assessment struct {
	Codes   []string
	Reasons []string
}

// Code renders the fired codes, or NONE
func (a Assessment) Code() string {
	if len(a.Codes) == 0 {
		return model.NoRisk
	}
	return strings.Join(a.Codes, Delimiter)
}

// Reason renders the fired reasons, or NONE
func (a Assessment) Reason() string {
	if len(a.Reasons) == 0 {
		return model.NoRisk
	}
	return strings.Join(a.Reasons, Delimiter)
}

// Engine evaluates items against risk profiles
type Engine struct {
	profiles []model.RiskProfile
}

// NewEngine creates an engine over compiled catalog profiles. Keywords
// are expected lower-cased.
func NewEngine(profiles []model.RiskProfile) *Engine {
	return &Engine{profiles: profiles}
}

// Check evaluates lower-cased item text and normalized price. Profiles fire
// in catalog order, each at most once.
func (e *Engine) Check(text string, price float64) Assessment {
	var a Assessment
	seen := make(map[string]bool, len(e.profiles))

	for _, p := range e.profiles {
		if seen[p.Code] || !matchesAny(text, p.Keywords) {
			continue
		}
		if p.ValueThreshold != nil && price <= *p.ValueThreshold {
			continue
		}
		seen[p.Code] = true
		a.Codes = append(a.Codes, p.Code)
		a.Reasons = append(a.Reasons, p.Explanation())
	}
	return a
}

// Apply checks the item and records its risk code and reason
func (e *Engine) Apply(item *model.LineItem, text string) Assessment {
	a := e.Check(text, item.Price)
	item.RiskCode = a.Code()
	item.RiskReason = a.Reason()
	return a
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Stats tallies flagged items. Category counts are per item, by the
// leading letter of each fired code.
func Stats(items []*model.LineItem) model.ProtectionStats {
	stats := model.ProtectionStats{ByCode: make(map[string]int)}
	for _, item := range items {
		if !item.IsFlagged() {
			continue
		}
		stats.ItemsFlagged++

		var catA, catB bool
		for _, code := range strings.Split(item.RiskCode, Delimiter) {
			stats.ByCode[code]++
			switch {
			case strings.HasPrefix(code, "A"):
				catA = true
			case strings.HasPrefix(code, "B"):
				catB = true
			}
		}
		if catA {
			stats.CategoryADangerous++
		}
		if catB {
			stats.CategoryBRestricted++
		}
	}
	return stats
}
