package widget

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Policy decides which widget renders a given column. Rules are evaluated in
// order; the first match wins.
type Policy struct {
	Version string       `yaml:"version" json:"version"`
	Rules   []PolicyRule `yaml:"rules" json:"rules"`
}

type PolicyRule struct {
	ID     string         `yaml:"id" json:"id"`
	When   RuleWhen       `yaml:"when" json:"when"`
	Widget string         `yaml:"widget" json:"widget"`
	Config map[string]any `yaml:"config" json:"config"`
	Stop   bool           `yaml:"stop" json:"stop"`
}

type RuleWhen struct {
	Types     []string `yaml:"types" json:"types"`
	NameRegex string   `yaml:"name_regex" json:"name_regex"`

	rx *regexp.Regexp
}

// supportedPolicy is the range of policy file versions this build understands.
var supportedPolicy = mustConstraint(">= 1.0.0, < 2.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks the policy version and compiles rule expressions.
func (p *Policy) Validate() error {
	if p.Version != "" {
		v, err := semver.NewVersion(p.Version)
		if err != nil {
			return fmt.Errorf("policy version: %w", err)
		}
		if !supportedPolicy.Check(v) {
			return fmt.Errorf("policy version %s outside supported range %s", p.Version, supportedPolicy)
		}
	}
	for i := range p.Rules {
		r := &p.Rules[i]
		if r.Widget == "" {
			return fmt.Errorf("rule %q: widget required", r.ID)
		}
		if _, err := ParseKind(strings.TrimSpace(r.Widget)); err != nil {
			return fmt.Errorf("rule %q: %w", r.ID, err)
		}
		if r.When.NameRegex != "" {
			if _, err := regexp.Compile(r.When.NameRegex); err != nil {
				return fmt.Errorf("rule %q: name_regex: %w", r.ID, err)
			}
		}
	}
	return nil
}

func (p *Policy) Normalize() {
	for i := range p.Rules {
		r := &p.Rules[i]
		r.Widget = strings.TrimSpace(r.Widget)
		for j, t := range r.When.Types {
			r.When.Types[j] = strings.ToLower(strings.TrimSpace(t))
		}
		if r.When.NameRegex != "" {
			r.When.rx = regexp.MustCompile(r.When.NameRegex)
		}
	}
}

// DefaultPolicy returns the compiled-in widget heuristics: foreign keys by
// the id_ name prefix, masked inputs for phone and government-id columns,
// date pickers for temporal types, plain input otherwise.
func DefaultPolicy() *Policy {
	p := &Policy{
		Version: "1.0.0",
		Rules: []PolicyRule{
			{
				ID:     "foreign-key",
				When:   RuleWhen{NameRegex: `^id_`},
				Widget: "dynamic-select",
				Config: map[string]any{"procedure": "listar_{{.RefTable}}"},
			},
			{
				ID:     "phone",
				When:   RuleWhen{NameRegex: `telefono|celular|movil|fax`},
				Widget: "masked-input",
				Config: map[string]any{"mask": "phone"},
			},
			{
				ID:     "id-number",
				When:   RuleWhen{NameRegex: `cedula|pasaporte|documento|rnc`},
				Widget: "masked-input",
				Config: map[string]any{"mask": "id-number"},
			},
			{
				ID:     "date",
				When:   RuleWhen{Types: []string{"fecha", "date", "datetime", "timestamp"}},
				Widget: "date-picker",
			},
			{ID: "fallback", Widget: "plain-input", Stop: true},
		},
	}
	p.Normalize()
	return p
}
