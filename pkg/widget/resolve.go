package widget

import "strings"

// Ctx carries the column attributes a rule can match against.
type Ctx struct {
	Name     string
	Type     string
	Table    string
	RefTable string
}

// Resolve returns the widget kind and rendered config for the column. Primary
// keys never reach Resolve; callers hide them and force a plain input.
func (p *Policy) Resolve(ctx Ctx) (Kind, map[string]any) {
	for _, r := range p.Rules {
		if match(r.When, ctx) {
			k, err := ParseKind(r.Widget)
			if err != nil {
				continue
			}
			return k, renderConfig(r.Config, ctx)
		}
	}
	return KindPlainInput, map[string]any{}
}

func match(w RuleWhen, c Ctx) bool {
	if len(w.Types) > 0 {
		t := strings.ToLower(c.Type)
		found := false
		for _, x := range w.Types {
			if x == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if w.rx != nil && !w.rx.MatchString(c.Name) {
		return false
	}
	return true
}
