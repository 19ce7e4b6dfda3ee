package model

import "regexp"

// ClassificationStatus records how an item's tariff code was obtained
type ClassificationStatus string

const (
	StatusRuleMatch ClassificationStatus = "RULE_MATCH" // A catalog pattern matched
	StatusNoMatch   ClassificationStatus = "NO_MATCH"   // No pattern matched, needs manual review
	StatusAPIMatch  ClassificationStatus = "API_MATCH"  // Remote service returned a code
	StatusAPIError  ClassificationStatus = "API_ERROR"  // Remote service failed, sentinel assigned
)

// IsMatch reports whether the status carries a real tariff code
func (s ClassificationStatus) IsMatch() bool {
	return s == StatusRuleMatch || s == StatusAPIMatch
}

// UnclassifiedCode is assigned when no tariff code could be determined
const UnclassifiedCode = "999999"

// ClassificationRule maps a text pattern to a six-digit tariff code.
// Rules are evaluated in catalog order and the first match wins.
type ClassificationRule struct {
	Pattern string         `yaml:"pattern"`
	HSCode  string         `yaml:"hs_code"`
	Group   string         `yaml:"group,omitempty"`
	Regexp  *regexp.Regexp `yaml:"-"`
}

// RiskProfile is a named rule describing goods that require inspection or control
type RiskProfile struct {
	Name     string   `yaml:"name"`
	Code     string   `yaml:"code"`
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	Reason   string   `yaml:"reason"`
	Action   string   `yaml:"action"`

	// ValueThreshold gates the profile: it fires only when the item's
	// normalized price is strictly greater. Nil means ungated.
	ValueThreshold *float64 `yaml:"value_threshold,omitempty"`
}

// Explanation is the reason and action text reported when the profile fires
func (p RiskProfile) Explanation() string {
	return p.Reason + " - " + p.Action
}
