package engine

import (
	"testing"

	"logrelay/pkg/model"
	"logrelay/pkg/syslog"
)

func msg(identifier, text string, priority int) *model.Message {
	m := &model.Message{Priority: priority, Text: []byte(text)}
	if identifier != "" {
		m.Identifier = []byte(identifier)
	}
	return m
}

func TestFilterProcessor(t *testing.T) {
	proc := NewFilterProcessor("filter", []string{"secret", "internal"})

	tests := []struct {
		name     string
		text     string
		wantDrop bool
	}{
		{name: "block word - drop", text: "this has secret value", wantDrop: true},
		{name: "second block word - drop", text: "internal only", wantDrop: true},
		{name: "clean - pass", text: "ordinary message", wantDrop: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drop, err := proc.Process(msg("", tt.text, syslog.DefaultPriority))
			if err != nil {
				t.Errorf("Process() error = %v", err)
			}
			if drop != tt.wantDrop {
				t.Errorf("Process() drop = %v, want %v", drop, tt.wantDrop)
			}
		})
	}
}

func TestRedactionProcessor(t *testing.T) {
	proc := NewRedactionProcessor("redact", "4111-1234", "xxxx")

	m := msg("", "card 4111-1234 charged", syslog.DefaultPriority)
	drop, err := proc.Process(m)
	if err != nil || drop {
		t.Fatalf("Process() = %v, %v", drop, err)
	}
	if string(m.Text) != "card xxxx charged" {
		t.Errorf("text not redacted: %q", m.Text)
	}
}

func TestFieldFilter_Identifier(t *testing.T) {
	proc, err := NewFieldFilterProcessor(FieldFilterConfig{
		Name:     "test",
		Field:    FieldIdentifier,
		Operator: OpEquals,
		Value:    "chatty",
	})
	if err != nil {
		t.Fatalf("Failed to create processor: %v", err)
	}

	tests := []struct {
		name       string
		identifier string
		wantDrop   bool
	}{
		{name: "exact match - drop", identifier: "chatty", wantDrop: true},
		{name: "no match - pass", identifier: "quiet", wantDrop: false},
		{name: "partial match - pass (equals is exact)", identifier: "chatty2", wantDrop: false},
		{name: "no identifier - pass", identifier: "", wantDrop: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drop, err := proc.Process(msg(tt.identifier, "hello", syslog.DefaultPriority))
			if err != nil {
				t.Errorf("Process() error = %v", err)
			}
			if drop != tt.wantDrop {
				t.Errorf("Process() drop = %v, want %v", drop, tt.wantDrop)
			}
		})
	}
}

func TestFieldFilter_SeverityByNameAndNumber(t *testing.T) {
	for _, value := range []string{"debug", "7"} {
		proc, err := NewFieldFilterProcessor(FieldFilterConfig{
			Name:     "test",
			Field:    FieldSeverity,
			Operator: OpEquals,
			Value:    value,
		})
		if err != nil {
			t.Fatalf("Failed to create processor: %v", err)
		}

		drop, _ := proc.Process(msg("", "x", syslog.FacilityUser|syslog.SeverityDebug))
		if !drop {
			t.Errorf("value %q: debug message not dropped", value)
		}
		drop, _ = proc.Process(msg("", "x", syslog.FacilityUser|syslog.SeverityErr))
		if drop {
			t.Errorf("value %q: err message dropped", value)
		}
	}
}

func TestFieldFilter_Regex(t *testing.T) {
	proc, err := NewFieldFilterProcessor(FieldFilterConfig{
		Name:     "test",
		Field:    FieldMessage,
		Operator: OpRegex,
		Value:    `failed for user \w+`,
	})
	if err != nil {
		t.Fatalf("Failed to create processor: %v", err)
	}

	drop, _ := proc.Process(msg("", "login failed for user bob", syslog.DefaultPriority))
	if !drop {
		t.Error("regex match not dropped")
	}
	drop, _ = proc.Process(msg("", "login ok", syslog.DefaultPriority))
	if drop {
		t.Error("non-match dropped")
	}
}

func TestFieldFilter_InvalidConfig(t *testing.T) {
	if _, err := NewFieldFilterProcessor(FieldFilterConfig{Field: "bogus"}); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := NewFieldFilterProcessor(FieldFilterConfig{Field: FieldMessage, Operator: OpRegex, Value: "("}); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestProcessorChain_StopsOnDrop(t *testing.T) {
	chain := NewProcessorChain(
		NewFilterProcessor("filter", []string{"bad"}),
		NewRedactionProcessor("redact", "secret", "xxxx"),
	)

	m := msg("", "this is bad and secret", syslog.DefaultPriority)
	drop, err := chain.Process(m)
	if err != nil {
		t.Fatalf("chain error: %v", err)
	}
	if !drop {
		t.Fatal("chain did not drop")
	}
	if string(m.Text) != "this is bad and secret" {
		t.Error("later processor ran after drop")
	}

	m = msg("", "just a secret", syslog.DefaultPriority)
	drop, _ = chain.Process(m)
	if drop {
		t.Fatal("clean message dropped")
	}
	if string(m.Text) != "just a xxxx" {
		t.Errorf("redaction skipped: %q", m.Text)
	}
}
