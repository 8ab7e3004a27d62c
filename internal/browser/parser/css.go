// internal/browser/parser/css.go
package parser

import (
	"regexp"
	"strings"
)

// StyleRule is one selector/declaration pairing extracted from stylesheet
// text. A comma-separated selector list in source expands into one StyleRule
// per branch, sharing the declaration map but carrying its own specificity
// and a distinct, strictly increasing Order. Immutable after construction.
type StyleRule struct {
	Selector     string
	Declarations map[string]string
	Specificity  int
	Order        int
}

// ExtractRules scans the supplied stylesheet sources, in order, for
// `selector-list { declarations }` blocks. Source order carries across
// sheets so later sheets win specificity ties. Malformed blocks stop their
// own extraction without aborting the rest of the scan.
func ExtractRules(sheets []string) []StyleRule {
	var rules []StyleRule
	order := 0
	for _, sheet := range sheets {
		s := &scanner{input: sheet}
		for {
			s.skipWhitespaceAndComments()
			if s.eof() {
				break
			}
			if s.current() == '@' {
				s.skipAtRule()
				continue
			}
			selector := s.readUntil('{')
			if s.eof() {
				break
			}
			block, closed := s.readBlock()
			if !closed {
				// Unbalanced braces: drop this rule, nothing left to scan.
				break
			}
			decls := ParseDeclarations(block)
			if len(decls) == 0 {
				continue
			}
			for _, branch := range strings.Split(selector, ",") {
				branch = strings.TrimSpace(branch)
				if branch == "" {
					continue
				}
				rules = append(rules, StyleRule{
					Selector:     branch,
					Declarations: decls,
					Specificity:  Specificity(branch),
					Order:        order,
				})
				order++
			}
		}
	}
	return rules
}

// ParseDeclarations splits a declaration list on ";" and each entry on the
// first ":". Property names are lower-cased; duplicates are last-write-wins.
// Entries without a colon are dropped silently.
func ParseDeclarations(text string) map[string]string {
	decls := make(map[string]string)
	for _, entry := range strings.Split(text, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		colon := strings.Index(entry, ":")
		if colon < 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(entry[:colon]))
		val := strings.TrimSpace(entry[colon+1:])
		if prop == "" || val == "" {
			continue
		}
		decls[prop] = val
	}
	return decls
}

var (
	idFragment     = regexp.MustCompile(`#[A-Za-z0-9_-]+`)
	classFragment  = regexp.MustCompile(`\.[A-Za-z0-9_-]+`)
	attrFragment   = regexp.MustCompile(`\[[^\]]*\]?`)
	pseudoFragment = regexp.MustCompile(`:[A-Za-z-]+`)
	tagToken       = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// Specificity ranks a selector branch as
// 10000*ids + 100*(classes+attributes) + tags. Coarser than CSS spec
// specificity, but stable and totally ordered, which is all the cascade
// tie-break needs.
func Specificity(selector string) int {
	ids := len(idFragment.FindAllString(selector, -1))
	classes := len(classFragment.FindAllString(selector, -1))
	attrs := len(attrFragment.FindAllString(selector, -1))

	// Strip counted fragments, then count what remains as tag tokens.
	stripped := idFragment.ReplaceAllString(selector, " ")
	stripped = classFragment.ReplaceAllString(stripped, " ")
	stripped = attrFragment.ReplaceAllString(stripped, " ")
	stripped = pseudoFragment.ReplaceAllString(stripped, " ")
	stripped = strings.ReplaceAll(stripped, ">", " ")

	tags := 0
	for _, tok := range strings.Fields(stripped) {
		if tagToken.MatchString(tok) {
			tags++
		}
	}
	return 10000*ids + 100*(classes+attrs) + tags
}

// -- Lexer-like helpers --

type scanner struct {
	input string
	pos   int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.input)
}

func (s *scanner) current() byte {
	if s.eof() {
		return 0
	}
	return s.input[s.pos]
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.eof() {
		ch := s.current()
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			s.pos++
			continue
		}
		if strings.HasPrefix(s.input[s.pos:], "/*") {
			end := strings.Index(s.input[s.pos+2:], "*/")
			if end < 0 {
				s.pos = len(s.input)
				return
			}
			s.pos += 2 + end + 2
			continue
		}
		return
	}
}

// readUntil consumes up to and including the delimiter, returning the text
// before it. At EOF the remainder is returned with pos left at the end.
func (s *scanner) readUntil(delim byte) string {
	start := s.pos
	for !s.eof() && s.current() != delim {
		s.pos++
	}
	text := s.input[start:s.pos]
	if !s.eof() {
		s.pos++ // consume delimiter
	}
	return text
}

// readBlock consumes a brace-balanced block body after the opening '{' has
// already been consumed. Reports whether a matching '}' was found.
func (s *scanner) readBlock() (string, bool) {
	start := s.pos
	depth := 1
	for !s.eof() {
		switch s.current() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				body := s.input[start:s.pos]
				s.pos++
				return body, true
			}
		}
		s.pos++
	}
	return s.input[start:], false
}

// skipAtRule skips "@media {...}"-style statements and "@import ...;" forms.
func (s *scanner) skipAtRule() {
	for !s.eof() {
		switch s.current() {
		case '{':
			s.pos++
			s.readBlock()
			return
		case ';':
			s.pos++
			return
		}
		s.pos++
	}
}
