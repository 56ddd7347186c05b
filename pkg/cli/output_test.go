package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("FormatJSON should produce a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("FormatText should produce a TextFormatter")
	}
	if _, ok := NewFormatter("bogus").(*TextFormatter); !ok {
		t.Error("unknown formats should fall back to text")
	}
}

func TestJSONFormatter(t *testing.T) {
	data := map[string]int{"score": 95}

	t.Run("compact", func(t *testing.T) {
		out, err := (&JSONFormatter{}).Format(data)
		if err != nil {
			t.Fatalf("Format failed: %v", err)
		}
		if string(out) != `{"score":95}` {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("indented", func(t *testing.T) {
		out, err := (&JSONFormatter{Indent: true}).Format(data)
		if err != nil {
			t.Fatalf("Format failed: %v", err)
		}
		if !strings.Contains(string(out), "\n  ") {
			t.Errorf("output = %q, want indentation", out)
		}
		var parsed map[string]int
		if err := json.Unmarshal(out, &parsed); err != nil {
			t.Errorf("output is not valid JSON: %v", err)
		}
	})

	t.Run("format to writer", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&JSONFormatter{}).FormatTo(&buf, data); err != nil {
			t.Fatalf("FormatTo failed: %v", err)
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("encoder output should end with a newline")
		}
	})
}

func TestTextFormatter(t *testing.T) {
	out, err := (&TextFormatter{}).Format("hello")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if string(out) != "hello\n" {
		t.Errorf("output = %q", out)
	}

	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatTo(&buf, 42); err != nil {
		t.Fatalf("FormatTo failed: %v", err)
	}
	if buf.String() != "42\n" {
		t.Errorf("output = %q", buf.String())
	}
}
