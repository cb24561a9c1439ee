// Package resolver maps a frame's namespace onto the best-matching source
// file under the project root.
package resolver

import (
	"path"
	"path/filepath"
	"strings"

	"culprit/internal/scanner"
	"culprit/pkg/config"
)

// Resolver finds the source file for a dot-qualified namespace whose final
// segment is conventionally the class name.
type Resolver struct {
	searcher  scanner.Searcher
	extension string
}

// Option is a functional option for configuring Resolver.
type Option func(*Resolver)

// WithExtension sets the source file extension, including the dot.
func WithExtension(ext string) Option {
	return func(r *Resolver) {
		if ext != "" {
			r.extension = ext
		}
	}
}

// WithSearcher sets the filesystem search gateway (useful for testing).
func WithSearcher(s scanner.Searcher) Option {
	return func(r *Resolver) {
		r.searcher = s
	}
}

// New creates a resolver backed by the default scanner.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		searcher:  scanner.New(config.DefaultConfig()),
		extension: ".cs",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the path of the best candidate file for the namespace, or
// false when no candidate exists. Search failures fold into "not found";
// the caller cannot distinguish the two.
func (r *Resolver) Resolve(root, namespace string) (string, bool) {
	segments := strings.Split(namespace, ".")
	className := segments[len(segments)-1]
	if className == "" {
		return "", false
	}

	candidates, err := r.searcher.FindByName(root, className+r.extension)
	if err != nil || len(candidates) == 0 {
		return "", false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	// Multiple same-named files: pick the one whose directory layout best
	// mirrors the namespace hierarchy. Ties keep search order.
	nsParts := lowerParts(segments[:len(segments)-1])
	best := candidates[0]
	bestScore := -1
	for _, candidate := range candidates {
		rel, err := filepath.Rel(root, candidate)
		if err != nil {
			rel = candidate
		}
		score := affinityScore(rel, nsParts)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, true
}

// affinityScore measures how well a relative file path mirrors the
// namespace hierarchy. Consecutive leading directory matches dominate;
// order-independent containment of namespace parts anywhere in the path
// gives partial credit for reorganized trees.
func affinityScore(relPath string, nsParts []string) int {
	rel := strings.ToLower(filepath.ToSlash(relPath))

	var dirParts []string
	if dir := path.Dir(rel); dir != "." {
		dirParts = strings.Split(dir, "/")
	}

	consecutive := 0
	for i := 0; i < len(dirParts) && i < len(nsParts); i++ {
		if dirParts[i] != nsParts[i] {
			break
		}
		consecutive++
	}

	containment := 0
	for _, part := range nsParts {
		if strings.Contains(rel, part) {
			containment++
		}
	}

	return 100*consecutive + 10*containment
}

func lowerParts(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.ToLower(p)
	}
	return out
}
