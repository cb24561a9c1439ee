// Package method locates a method's line span inside a source file using a
// permissive signature pattern and brace-balance scanning. It is a
// heuristic, not a language parser: braces inside string or character
// literals and comments are counted like any other, which can misplace the
// end boundary.
package method

import (
	"os"
	"regexp"
	"strings"

	"culprit/pkg/models"
)

// signaturePattern builds a pattern matching a method declaration line:
// an optional access modifier, optional static/async qualifiers, an
// optional return-type token, then the literal method name followed by an
// opening parenthesis.
func signaturePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(
		`^\s*` +
			`(?:(?:public|private|protected|internal)\s+)*` +
			`(?:static\s+)?` +
			`(?:async\s+)?` +
			`(?:[\w<>\[\],?.]+\s+)?` +
			regexp.QuoteMeta(name) +
			`\s*\(`,
	)
}

// Locate finds the 1-based inclusive line span of the first method named
// name in the source text. The first line matching the signature pattern is
// the declaration; the body ends on the first line where the running brace
// counter returns to zero after having gone positive. Returns false when
// the pattern never matches or the declaration has no body.
func Locate(source, name string) (models.LineSpan, bool) {
	lines := strings.Split(source, "\n")
	pattern := signaturePattern(name)

	start := -1
	for i, line := range lines {
		if pattern.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return models.LineSpan{}, false
	}

	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return models.LineSpan{Start: start + 1, End: i + 1}, true
		}
	}

	if !opened {
		// Bodyless declaration, e.g. an abstract or interface stub.
		return models.LineSpan{}, false
	}
	// Unbalanced body runs to EOF; clamp to the last line.
	return models.LineSpan{Start: start + 1, End: len(lines)}, true
}

// LocateInFile reads path and locates the method span within it.
func LocateInFile(path, name string) (models.LineSpan, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.LineSpan{}, false, err
	}
	span, ok := Locate(string(content), name)
	return span, ok, nil
}
