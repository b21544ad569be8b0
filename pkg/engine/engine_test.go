package engine

import (
	"testing"

	"logrelay/pkg/model"
	"logrelay/pkg/syslog"
)

func BenchmarkChain_NoMatch(b *testing.B) {
	chain := NewProcessorChain(
		NewFilterProcessor("drop_debug", []string{"DEBUG"}),
		NewRedactionProcessor("redact_cc", "4111-1234", "xxxx"),
	)

	m := &model.Message{
		Priority: syslog.DefaultPriority,
		Text:     []byte("INFO: User login successful for ID 9999"),
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		// Neither processor matches, so the chain should not allocate.
		_, _ = chain.Process(m)
	}
}

func BenchmarkChain_WithRedaction(b *testing.B) {
	chain := NewProcessorChain(
		NewRedactionProcessor("redact_secret", "SECRET", "XXXXXX"),
	)
	text := []byte("This log contains a SECRET value")
	m := &model.Message{Priority: syslog.DefaultPriority}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		// This WILL alloc because bytes.ReplaceAll generates a new slice.
		m.Text = text
		_, _ = chain.Process(m)
	}
}
