// internal/browser/style/resolver.go
package style

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/IdiotStudios/rfheadless/internal/browser/dom"
	"github.com/IdiotStudios/rfheadless/internal/browser/parser"
)

// Resolver implements the cascade: it owns the ordered rule set built from
// stylesheet text and combines matched rules with inline-style overrides per
// element. Computed styles are never cached; every call re-reads the current
// attribute state so script-driven mutations are always visible.
type Resolver struct {
	arena  *dom.Arena
	rules  []parser.StyleRule
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger, arena *dom.Arena) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		arena:  arena,
		logger: logger.Named("style"),
	}
}

// Rebuild replaces the rule set from the supplied stylesheet sources.
func (r *Resolver) Rebuild(sheets []string) {
	r.rules = parser.ExtractRules(sheets)
	r.logger.Debug("Rebuilt stylesheet rules",
		zap.Int("sheets", len(sheets)), zap.Int("rules", len(r.rules)))
}

// Rules exposes the current ordered rule set (read-only use).
func (r *Resolver) Rules() []parser.StyleRule {
	return r.rules
}

// ComputedStyle resolves the active declaration map for the element at idx.
// Matched rules merge in ascending (specificity, order), so higher
// specificity and later source order win; inline style is applied last and
// always wins.
func (r *Resolver) ComputedStyle(idx int) *ComputedStyle {
	merged := make(map[string]string)

	el := r.arena.At(idx)
	if el == nil {
		return &ComputedStyle{props: merged}
	}

	var matched []parser.StyleRule
	for _, rule := range r.rules {
		if r.arena.Matches(idx, rule.Selector) {
			matched = append(matched, rule)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Specificity != matched[j].Specificity {
			return matched[i].Specificity < matched[j].Specificity
		}
		return matched[i].Order < matched[j].Order
	})
	for _, rule := range matched {
		for prop, val := range rule.Declarations {
			merged[prop] = val
		}
	}

	if inline, ok := el.GetAttribute("style"); ok {
		for prop, val := range parser.ParseDeclarations(inline) {
			merged[prop] = val
		}
	}
	return &ComputedStyle{props: merged}
}

// ComputedStyle is an ephemeral per-query property lookup. Raw values are
// kept as merged; normalization happens at lookup time.
type ComputedStyle struct {
	props map[string]string
}

// unitProperties is the fixed set of box/typography properties routed
// through the unit normalizer.
var unitProperties = map[string]bool{
	"font-size":      true,
	"margin":         true,
	"margin-top":     true,
	"margin-bottom":  true,
	"padding":        true,
	"padding-top":    true,
	"padding-bottom": true,
	"width":          true,
	"height":         true,
}

// GetPropertyValue looks up a property by (case-insensitive) name. Color
// properties pass through the color normalizer, the fixed box/typography set
// through the unit normalizer; everything else is returned trimmed. Unknown
// properties yield the empty string.
func (cs *ComputedStyle) GetPropertyValue(name string) string {
	prop := strings.ToLower(strings.TrimSpace(name))
	raw, ok := cs.props[prop]
	if !ok {
		return ""
	}
	switch {
	case strings.Contains(prop, "color") || prop == "background":
		return NormalizeColor(raw)
	case unitProperties[prop]:
		return NormalizeUnit(raw)
	default:
		return strings.TrimSpace(raw)
	}
}

// Properties returns the resolved property names (diagnostic use).
func (cs *ComputedStyle) Properties() []string {
	out := make([]string, 0, len(cs.props))
	for prop := range cs.props {
		out = append(out, prop)
	}
	sort.Strings(out)
	return out
}
