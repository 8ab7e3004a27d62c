// internal/browser/dom/match.go
package dom

import "strings"

// Selector matching over the flattened arena. Complex selectors (descendant
// and child combinators) are matched right to left: the rightmost compound
// must match the candidate itself, then the walk proceeds up the parent
// chain. Anything the grammar does not recognize evaluates to no-match; a
// caller can never observe a parse failure.

// Matches reports whether the element at idx matches the selector text. A
// comma-separated selector list matches when any branch matches.
func (a *Arena) Matches(idx int, selector string) bool {
	if a.At(idx) == nil {
		return false
	}
	for _, branch := range strings.Split(selector, ",") {
		if a.matchBranch(idx, strings.TrimSpace(branch)) {
			return true
		}
	}
	return false
}

// QueryFirst returns the index of the first matching element. Branches are
// tried left to right; the first branch with a match wins.
func (a *Arena) QueryFirst(selector string) (int, bool) {
	for _, branch := range strings.Split(selector, ",") {
		branch = strings.TrimSpace(branch)
		for i := range a.elems {
			if a.matchBranch(i, branch) {
				return i, true
			}
		}
	}
	return -1, false
}

// QueryAll returns the indices of all matching elements in document order.
func (a *Arena) QueryAll(selector string) []int {
	var out []int
	for i := range a.elems {
		if a.Matches(i, selector) {
			out = append(out, i)
		}
	}
	return out
}

// matchBranch evaluates one comma-branch against the element at idx.
func (a *Arena) matchBranch(idx int, branch string) bool {
	if branch == "" {
		return false
	}
	if !strings.ContainsAny(branch, " \t>") {
		return a.matchSimple(idx, branch)
	}
	return a.matchComplex(idx, branch)
}

// matchComplex handles descendant and child combinators. Tokens are matched
// right to left against the candidate's ancestor chain.
func (a *Arena) matchComplex(idx int, branch string) bool {
	// Keep ">" as a standalone token even when written without spaces.
	branch = strings.ReplaceAll(branch, ">", " > ")
	tokens := strings.Fields(branch)
	if len(tokens) == 0 || tokens[len(tokens)-1] == ">" {
		return false
	}

	// The rightmost compound anchors on the candidate itself.
	if !a.matchSimple(idx, tokens[len(tokens)-1]) {
		return false
	}

	cur := idx
	i := len(tokens) - 2
	for i >= 0 {
		if tokens[i] == ">" {
			i--
			if i < 0 {
				return false
			}
			parent := a.elems[cur].Parent
			if parent < 0 || !a.matchSimple(parent, tokens[i]) {
				return false
			}
			cur = parent
			i--
			continue
		}
		// Implicit descendant combinator: any ancestor may match.
		anc := a.elems[cur].Parent
		matched := -1
		for anc >= 0 {
			if a.matchSimple(anc, tokens[i]) {
				matched = anc
				break
			}
			anc = a.elems[anc].Parent
		}
		if matched < 0 {
			return false
		}
		cur = matched
		i--
	}
	return true
}

// matchSimple evaluates a single compound token: #id, .class, [attr...],
// tag.class, bare tag, or any of those with a trailing :first-child /
// :last-child pseudo-class.
func (a *Arena) matchSimple(idx int, sel string) bool {
	el := a.At(idx)
	if el == nil || sel == "" {
		return false
	}

	if base, ok := strings.CutSuffix(sel, ":first-child"); ok {
		if !a.isFirstChild(idx) {
			return false
		}
		if base == "" {
			return true
		}
		return a.matchSimple(idx, base)
	}
	if base, ok := strings.CutSuffix(sel, ":last-child"); ok {
		if !a.isLastChild(idx) {
			return false
		}
		if base == "" {
			return true
		}
		return a.matchSimple(idx, base)
	}

	switch {
	case strings.HasPrefix(sel, "#"):
		return sel[1:] != "" && el.ID == sel[1:]
	case strings.HasPrefix(sel, "."):
		return el.HasClass(sel[1:])
	case strings.HasPrefix(sel, "["):
		return matchAttribute(el, sel)
	}

	if sel == "*" {
		return true
	}
	if dot := strings.Index(sel, "."); dot > 0 {
		return strings.EqualFold(el.Tag, sel[:dot]) && el.HasClass(sel[dot+1:])
	}
	if !isIdentifier(sel) {
		return false
	}
	return strings.EqualFold(el.Tag, sel)
}

// matchAttribute evaluates "[name]" and "[name<op>value]" forms. Operators
// follow the CSS attribute-selector semantics: ~= whitespace token, ^=/$=/*=
// literal substring at start/end/anywhere, |= exact or prefix before "-".
func matchAttribute(el *Element, sel string) bool {
	if !strings.HasSuffix(sel, "]") {
		return false
	}
	body := strings.TrimSpace(sel[1 : len(sel)-1])
	if body == "" {
		return false
	}

	ops := []string{"~=", "^=", "$=", "*=", "|=", "="}
	name, op, want := body, "", ""
	for _, candidate := range ops {
		if i := strings.Index(body, candidate); i >= 0 {
			name = strings.TrimSpace(body[:i])
			op = candidate
			want = unquote(strings.TrimSpace(body[i+len(candidate):]))
			break
		}
	}
	if name == "" {
		return false
	}

	got, present := el.GetAttribute(name)
	if !present {
		return false
	}
	switch op {
	case "":
		return true
	case "=":
		return got == want
	case "~=":
		for _, tok := range strings.Fields(got) {
			if tok == want {
				return true
			}
		}
		return false
	case "^=":
		return want != "" && strings.HasPrefix(got, want)
	case "$=":
		return want != "" && strings.HasSuffix(got, want)
	case "*=":
		return want != "" && strings.Contains(got, want)
	case "|=":
		return got == want || strings.HasPrefix(got, want+"-")
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		ok := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch == '-' || ch == '_'
		if !ok {
			return false
		}
	}
	return true
}
