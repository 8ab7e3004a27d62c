// internal/browser/style/values.go
package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value normalization: pure canonicalization of raw CSS values. Colors
// collapse to 6-digit hex (or a normalized rgba() string when translucent),
// lengths gain a px suffix when they are bare numbers. Unrecognized input
// passes through lower-cased and trimmed so callers always get a stable form.

var namedColors = map[string]string{
	"red":   "#ff0000",
	"green": "#008000",
	"blue":  "#0000ff",
	"black": "#000000",
	"white": "#ffffff",
}

// NormalizeColor canonicalizes hex, rgb()/rgba(), hsl()/hsla(), and a small
// set of named colors. Anything else is returned lower-cased and trimmed.
func NormalizeColor(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return v
	}

	if hex, ok := namedColors[v]; ok {
		return hex
	}

	if strings.HasPrefix(v, "#") {
		return normalizeHex(v)
	}

	if fn, args, ok := splitFunction(v); ok {
		switch fn {
		case "rgb", "rgba":
			if out, ok := normalizeRGB(args); ok {
				return out
			}
		case "hsl", "hsla":
			if out, ok := normalizeHSL(args); ok {
				return out
			}
		}
	}
	return v
}

// NormalizeUnit strips whitespace, lower-cases, and appends "px" to bare
// non-negative numbers. No unit conversion is performed.
func NormalizeUnit(raw string) string {
	v := strings.ToLower(stripSpace(raw))
	if v == "" {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
		return v + "px"
	}
	return v
}

func stripSpace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeHex(v string) string {
	body := v[1:]
	switch len(body) {
	case 3:
		var b strings.Builder
		b.WriteByte('#')
		for i := 0; i < 3; i++ {
			b.WriteByte(body[i])
			b.WriteByte(body[i])
		}
		if isHex(body) {
			return b.String()
		}
	case 6:
		if isHex(body) {
			return v
		}
	}
	return v
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		ok := (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f')
		if !ok {
			return false
		}
	}
	return true
}

// splitFunction breaks "name(a, b, c)" into its name and comma-split args.
func splitFunction(v string) (string, []string, bool) {
	open := strings.Index(v, "(")
	if open <= 0 || !strings.HasSuffix(v, ")") {
		return "", nil, false
	}
	name := strings.TrimSpace(v[:open])
	inner := v[open+1 : len(v)-1]
	parts := strings.Split(inner, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return name, parts, true
}

// clampChannel rounds then wraps into 0..255. The wrap (rather than
// saturation) matches the engine's historical channel handling.
func clampChannel(f float64) int {
	n := int(math.Round(f)) % 256
	if n < 0 {
		n += 256
	}
	return n
}

func normalizeRGB(args []string) (string, bool) {
	if len(args) != 3 && len(args) != 4 {
		return "", false
	}
	ch := make([]float64, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return "", false
		}
		ch[i] = n
	}
	alpha := 1.0
	if len(args) == 4 {
		a, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return "", false
		}
		alpha = a
	}
	return formatRGBA(ch[0], ch[1], ch[2], alpha), true
}

func formatRGBA(r, g, b, alpha float64) string {
	ri, gi, bi := clampChannel(r), clampChannel(g), clampChannel(b)
	if alpha >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", ri, gi, bi)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", ri, gi, bi,
		strconv.FormatFloat(alpha, 'g', -1, 64))
}

func normalizeHSL(args []string) (string, bool) {
	if len(args) != 3 && len(args) != 4 {
		return "", false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return "", false
	}
	s, err := parsePercent(args[1])
	if err != nil {
		return "", false
	}
	l, err := parsePercent(args[2])
	if err != nil {
		return "", false
	}
	alpha := 1.0
	if len(args) == 4 {
		a, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return "", false
		}
		alpha = a
	}
	r, g, b := hslToRGB(h, s, l)
	return formatRGBA(r, g, b, alpha), true
}

func parsePercent(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	return n / 100, nil
}

// hslToRGB is the standard hue/saturation/lightness conversion; channels are
// returned in 0..255.
func hslToRGB(h, s, l float64) (float64, float64, float64) {
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360

	if s == 0 {
		v := l * 255
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r := hueToChannel(p, q, h+1.0/3.0)
	g := hueToChannel(p, q, h)
	b := hueToChannel(p, q, h-1.0/3.0)
	return r * 255, g * 255, b * 255
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
