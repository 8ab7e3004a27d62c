// internal/browser/session/stack.go
package session

import (
	"regexp"
	"strconv"
	"strings"
)

// Stack frames arrive in three shapes depending on the producing engine:
//
//	at handler (app.js:10:5)      parenthesized source position
//	handler@app.js:10:5           @-separated source position
//	app.js:10:5                   bare source position
//
// The first frame that yields a position wins.
var (
	parenFrame = regexp.MustCompile(`\(([^()]+):(\d+):(\d+)\)`)
	atFrame    = regexp.MustCompile(`@(.+):(\d+):(\d+)$`)
	bareFrame  = regexp.MustCompile(`^(.+):(\d+):(\d+)$`)
)

// ParseStackInfo extracts the topmost source position from a stack string.
// It returns ok=false when no frame carries a parseable position.
func ParseStackInfo(stack string) (source string, line, column int, ok bool) {
	for _, raw := range strings.Split(stack, "\n") {
		frame := strings.TrimSpace(raw)
		if frame == "" {
			continue
		}
		if src, line, col, ok := position(parenFrame.FindStringSubmatch(frame)); ok {
			return src, line, col, true
		}
		if src, line, col, ok := position(atFrame.FindStringSubmatch(frame)); ok {
			return src, line, col, true
		}
		trimmed := strings.TrimPrefix(frame, "at ")
		if src, line, col, ok := position(bareFrame.FindStringSubmatch(trimmed)); ok {
			return src, line, col, true
		}
	}
	return "", 0, 0, false
}

// position validates one regex capture. Frames from native code carry a zero
// line and are skipped.
func position(m []string) (string, int, int, bool) {
	if m == nil {
		return "", 0, 0, false
	}
	line, err := strconv.Atoi(m[2])
	if err != nil || line <= 0 {
		return "", 0, 0, false
	}
	col, err := strconv.Atoi(m[3])
	if err != nil {
		return "", 0, 0, false
	}
	return m[1], line, col, true
}
