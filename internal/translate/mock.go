package translate

import (
	"context"
	"sync"
)

// MockCall records one Translate invocation.
type MockCall struct {
	Text       string
	SourceLang string
	TargetLang string
}

// Mock is a recording Translator for tests. Reply, when set, computes the
// result; otherwise the text passes through with a language tag appended.
type Mock struct {
	mu    sync.Mutex
	calls []MockCall

	Reply func(text, sourceLang, targetLang string) (string, error)
}

func (m *Mock) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Text: text, SourceLang: sourceLang, TargetLang: targetLang})
	m.mu.Unlock()

	if m.Reply != nil {
		return m.Reply(text, sourceLang, targetLang)
	}
	return text + " [" + targetLang + "]", nil
}

func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
