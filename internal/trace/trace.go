// Package trace extracts structured stack frames from pasted exception
// trace text.
package trace

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"culprit/pkg/models"
)

// ErrNoFrames is returned when the trace contains zero qualifying frames
// after noise filtering. This is a normal outcome for traces made up
// entirely of runtime frames, not a fault.
var ErrNoFrames = errors.New("no actionable stack frames in trace")

var (
	// arityRe matches compiler-generated arity markers such as `2.
	arityRe = regexp.MustCompile("`\\d+")
	// genericArgsRe matches bracketed generic-argument lists.
	genericArgsRe = regexp.MustCompile(`\[[^\]]*\]`)
	// stateMachineRe matches compiler-generated state-machine segments
	// such as <Submit>d__4 or <Submit>b__12_0.
	stateMachineRe = regexp.MustCompile(`^<([^<>]+)>`)
	// sourceLineRe matches the optional "in <file>:line <n>" suffix.
	sourceLineRe = regexp.MustCompile(`:line (\d+)`)
)

// Parser turns raw trace text into deduplicated stack frames.
type Parser struct {
	markers       []string
	noisePrefixes []string
}

// Option is a functional option for configuring Parser.
type Option func(*Parser)

// WithMarkers sets the locale-specific frame marker tokens.
func WithMarkers(markers []string) Option {
	return func(p *Parser) {
		if len(markers) > 0 {
			p.markers = markers
		}
	}
}

// WithNoisePrefixes sets the top-level namespace segments filtered as
// runtime/base-library noise.
func WithNoisePrefixes(prefixes []string) Option {
	return func(p *Parser) {
		p.noisePrefixes = prefixes
	}
}

// NewParser creates a parser with default frame markers and noise filters.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		markers:       []string{"at "},
		noisePrefixes: []string{"System", "Microsoft"},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse scans the trace text and returns the qualifying frames in order of
// first occurrence, deduplicated by namespace.method. Returns ErrNoFrames
// when nothing qualifies.
func (p *Parser) Parse(text string) ([]models.StackFrame, error) {
	var frames []models.StackFrame
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		frame, ok := p.parseLine(line)
		if !ok {
			continue
		}
		key := frame.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return frames, nil
}

// parseLine extracts a single frame from one trace line.
func (p *Parser) parseLine(line string) (models.StackFrame, bool) {
	trimmed := strings.TrimSpace(line)

	rest := ""
	matched := false
	for _, marker := range p.markers {
		if strings.HasPrefix(trimmed, marker) {
			rest = trimmed[len(marker):]
			matched = true
			break
		}
	}
	if !matched {
		return models.StackFrame{}, false
	}

	open := strings.Index(rest, "(")
	if open <= 0 {
		return models.StackFrame{}, false
	}
	end := strings.Index(rest[open:], ")")
	if end < 0 {
		return models.StackFrame{}, false
	}
	qualified := strings.TrimSpace(rest[:open])
	suffix := rest[open+end+1:]

	namespace, method, ok := splitQualified(qualified)
	if !ok {
		return models.StackFrame{}, false
	}
	if p.isNoise(namespace) {
		return models.StackFrame{}, false
	}

	frame := models.StackFrame{Namespace: namespace, Method: method}
	if m := sourceLineRe.FindStringSubmatch(suffix); m != nil {
		frame.Line, _ = strconv.Atoi(m[1])
	}
	return frame, true
}

// splitQualified splits a dot-qualified name into namespace and normalized
// method. Names with no namespace part are rejected.
func splitQualified(qualified string) (namespace, method string, ok bool) {
	// Bracketed generic-argument lists can themselves contain dots
	// (e.g. Submit[System.String]), so strip them before splitting.
	qualified = genericArgsRe.ReplaceAllString(qualified, "")

	segments := strings.Split(qualified, ".")
	if len(segments) < 2 {
		return "", "", false
	}

	// Collapse async state machines: Class.<Submit>d__4.MoveNext exposes
	// MoveNext as the method, but the enclosing method is Submit.
	last := segments[len(segments)-1]
	if last == "MoveNext" && len(segments) >= 3 {
		if m := stateMachineRe.FindStringSubmatch(segments[len(segments)-2]); m != nil {
			segments = append(segments[:len(segments)-2], m[1])
		}
	}

	method = normalizeMethod(segments[len(segments)-1])
	if method == "" {
		return "", "", false
	}
	namespace = strings.Join(segments[:len(segments)-1], ".")
	if namespace == "" {
		return "", "", false
	}
	return namespace, method, true
}

// normalizeMethod strips compiler decoration from a raw method token.
func normalizeMethod(token string) string {
	token = arityRe.ReplaceAllString(token, "")
	token = genericArgsRe.ReplaceAllString(token, "")

	// Angle-bracket wrappers: <Submit>b__0 collapses to the enclosing
	// method's base name; Submit<T> keeps the text before the bracket.
	if strings.HasPrefix(token, "<") {
		if end := strings.Index(token, ">"); end > 1 {
			token = token[1:end]
		}
	} else if idx := strings.Index(token, "<"); idx > 0 {
		token = token[:idx]
	}

	return strings.TrimSpace(token)
}

// isNoise reports whether the namespace's top-level segment is a reserved
// runtime/base-library prefix.
func (p *Parser) isNoise(namespace string) bool {
	top := namespace
	if idx := strings.Index(namespace, "."); idx >= 0 {
		top = namespace[:idx]
	}
	for _, prefix := range p.noisePrefixes {
		if top == prefix {
			return true
		}
	}
	return false
}
