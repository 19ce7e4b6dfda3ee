// Package catalog holds the ordered, immutable rule tables of the pipeline:
// tariff classification rules and risk profiles. The built-in tables can be
// replaced section by section from a YAML file.
package catalog

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ppiankov/customsgate/internal/model"
	"gopkg.in/yaml.v3"
)

// Catalog is the rule set of a run. It is built once and only read afterwards.
type Catalog struct {
	Rules    []model.ClassificationRule `yaml:"classification_rules"`
	Profiles []model.RiskProfile        `yaml:"risk_profiles"`
}

// Default returns a fresh copy of the built-in catalog with compiled patterns
func Default() *Catalog {
	rules := make([]model.ClassificationRule, len(defaultRules))
	copy(rules, defaultRules)

	c := &Catalog{Rules: rules, Profiles: defaultProfiles()}
	if err := c.compile(); err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// Load reads a YAML catalog override. Sections absent from the file keep
// their built-in defaults. An empty path returns the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.DataError{File: path, Msg: "cannot read catalog", Err: err}
	}
	return Parse(data, path)
}

// Parse decodes a YAML catalog document
func Parse(data []byte, name string) (*Catalog, error) {
	var doc Catalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &model.DataError{File: name, Msg: "invalid catalog YAML", Err: err}
	}

	c := Default()
	if len(doc.Rules) > 0 {
		c.Rules = doc.Rules
	}
	if len(doc.Profiles) > 0 {
		c.Profiles = doc.Profiles
	}

	if err := c.compile(); err != nil {
		return nil, &model.DataError{File: name, Msg: "invalid catalog", Err: err}
	}
	return c, nil
}

// Dump writes the catalog as YAML
func (c *Catalog) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

// compile validates entries, compiles patterns case-insensitively and
// lower-cases keywords
func (c *Catalog) compile() error {
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Pattern == "" || r.HSCode == "" {
			return fmt.Errorf("classification rule %d: pattern and hs_code are required", i+1)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return fmt.Errorf("classification rule %d (%s): %w", i+1, r.HSCode, err)
		}
		r.Regexp = re
	}

	seen := make(map[string]bool, len(c.Profiles))
	for i := range c.Profiles {
		p := &c.Profiles[i]
		if p.Code == "" || len(p.Keywords) == 0 {
			return fmt.Errorf("risk profile %d: code and keywords are required", i+1)
		}
		if seen[p.Code] {
			return fmt.Errorf("risk profile %d: duplicate code %s", i+1, p.Code)
		}
		seen[p.Code] = true

		keywords := make([]string, 0, len(p.Keywords))
		for _, kw := range p.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		p.Keywords = keywords
	}
	return nil
}
