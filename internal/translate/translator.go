package translate

import "context"

// Translator is the machine-translation collaborator. Implementations are
// opaque to the relay: callers degrade to passing the original text through
// on any error, so a Translator failure never blocks message delivery.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Noop passes text through unchanged. Used when no translator endpoint is
// configured.
type Noop struct{}

func (Noop) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
