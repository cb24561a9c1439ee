package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"text", FormatText},
		{"", FormatText},
		{"bogus", FormatText},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatterJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	table := NewTable("Frames", []string{"Frame"}, [][]string{{"App.Orders.OrderService.Submit"}}, nil,
		map[string]any{"total": 1})
	if err := f.Output(table); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["total"] != float64(1) {
		t.Errorf("decoded = %v, want the wrapped data, not the rows", decoded)
	}
}

func TestFormatterYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	f, err := NewFormatter(FormatYAML, path, false)
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := f.Output(map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]string
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded["status"] != "ok" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestTableRenderData_FallsBackToRows(t *testing.T) {
	table := NewTable("", []string{"Hash", "Author"}, [][]string{
		{"aaa", "Alice"},
		{"bbb", "Bob"},
	}, nil, nil)

	data, ok := table.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData() = %T, want []map[string]string", table.RenderData())
	}
	if len(data) != 2 || data[0]["Hash"] != "aaa" || data[1]["Author"] != "Bob" {
		t.Errorf("RenderData() = %v", data)
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Commits", []string{"Hash", "Author"}, [][]string{
		{"aaa", "Alice"},
	}, []string{"1 commit", ""}, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"## Commits",
		"| Hash | Author |",
		"| --- | --- |",
		"| aaa | Alice |",
		"| 1 commit |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestTableRenderText(t *testing.T) {
	table := NewTable("Commits", []string{"Hash", "Author"}, [][]string{
		{"aaa", "Alice"},
	}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Commits") {
		t.Errorf("text output missing title:\n%s", out)
	}
	if !strings.Contains(out, "Alice") {
		t.Errorf("text output missing row content:\n%s", out)
	}
}
