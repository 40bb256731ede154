package output

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetFormatterYAML tests that GetFormatter returns a YAML formatter
func TestGetFormatterYAML(t *testing.T) {
	formatter, err := GetFormatter(FormatYAML)
	if err != nil {
		t.Fatalf("GetFormatter(FormatYAML) failed: %v", err)
	}

	_, ok := formatter.(*YAMLFormatter)
	if !ok {
		t.Errorf("expected *YAMLFormatter, got %T", formatter)
	}
}

// TestGetFormatterJSON tests that GetFormatter returns a JSON formatter
func TestGetFormatterJSON(t *testing.T) {
	formatter, err := GetFormatter(FormatJSON)
	if err != nil {
		t.Fatalf("GetFormatter(FormatJSON) failed: %v", err)
	}

	_, ok := formatter.(*JSONFormatter)
	if !ok {
		t.Errorf("expected *JSONFormatter, got %T", formatter)
	}
}

func TestGetFormatterInvalid(t *testing.T) {
	_, err := GetFormatter(Format("cgf"))
	if err == nil {
		t.Error("GetFormatter should return error for invalid format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"", FormatYAML, false},
		{"json", FormatJSON, false},
		{" Json ", FormatJSON, false},
		{"cgf", "", true},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if !ValidateFormat(FormatYAML) || !ValidateFormat(FormatJSON) {
		t.Error("yaml and json should be valid")
	}
	if ValidateFormat(Format("toml")) {
		t.Error("toml should be invalid")
	}
	if DefaultFormat != FormatYAML {
		t.Errorf("DefaultFormat = %v, want yaml", DefaultFormat)
	}
}

func TestYAMLOutput(t *testing.T) {
	out := &ClassifyOutput{Labels: []LabelClass{
		{Label: "Orders DB", Type: "database", Layer: "data", Role: "process", Badge: "[DB]"},
		{Label: "Thing", Type: "generic", Layer: "service", Role: "process"},
	}}

	got, err := NewYAMLFormatter().Format(out)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	for _, want := range []string{"labels:", "- label: Orders DB", "type: database", "[DB]"} {
		if !strings.Contains(got, want) {
			t.Errorf("YAML output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "badge:") != 1 {
		t.Errorf("empty badge should be omitted:\n%s", got)
	}
}

func TestJSONOutput(t *testing.T) {
	out := &HistoryOutput{
		Entries: []HistoryEntry{{Fingerprint: "abc", Kind: "flowchart", Theme: "modern", Style: "pro", Elements: 5, CreatedAt: "2026-01-02T03:04:05Z", Hits: 2}},
		Count:   1,
	}

	var buf bytes.Buffer
	if err := Write(&buf, "json", out); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got := buf.String()
	for _, want := range []string{`"fingerprint": "abc"`, `"type": "flowchart"`, `"count": 1`} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "description") {
		t.Errorf("empty description should be omitted:\n%s", got)
	}
}

func TestWriteInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "xml", struct{}{}); err == nil {
		t.Error("Write should reject unknown formats")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written on error, got %q", buf.String())
	}
}
