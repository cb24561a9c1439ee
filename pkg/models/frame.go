// Package models defines the data structures shared across the analysis
// pipeline: parsed stack frames, resolved source locations, classified
// commit records, and the per-run report.
package models

// StackFrame is one parsed line of an exception stack trace.
type StackFrame struct {
	// Namespace is the dot-qualified path up to, but excluding, the method.
	// The final segment is conventionally the class name.
	Namespace string `json:"namespace"`
	// Method is the method name with compiler decoration stripped.
	Method string `json:"method"`
	// Line is the source line reported by the trace, 0 when absent.
	Line int `json:"line,omitempty"`
}

// Key returns the deduplication key for the frame.
func (f StackFrame) Key() string {
	return f.Namespace + "." + f.Method
}

// ClassName returns the final segment of the namespace.
func (f StackFrame) ClassName() string {
	for i := len(f.Namespace) - 1; i >= 0; i-- {
		if f.Namespace[i] == '.' {
			return f.Namespace[i+1:]
		}
	}
	return f.Namespace
}

// LineSpan is a 1-based inclusive range of lines within a source file.
type LineSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ResolvedLocation is the outcome of resolving a frame to a source file
// and method body.
type ResolvedLocation struct {
	Namespace string    `json:"namespace"`
	Method    string    `json:"method"`
	FilePath  string    `json:"file_path,omitempty"`
	Found     bool      `json:"found"`
	Span      *LineSpan `json:"span,omitempty"`
}

// MethodFound reports whether the method body was located inside the file.
func (l ResolvedLocation) MethodFound() bool {
	return l.Found && l.Span != nil
}
