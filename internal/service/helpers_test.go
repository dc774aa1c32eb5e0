package service

import (
	"testing"

	"github.com/lingolink/relay-server-go/internal/registry"
)

// drainEvents pulls every queued event off a client without blocking.
func drainEvents(c *registry.Client) []registry.Event {
	var events []registry.Event
	for {
		select {
		case ev := <-c.Events:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func eventTypes(events []registry.Event) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func TestNormalizeHelpers(t *testing.T) {
	if got := normalizeCode("  abcd-efgh "); got != "ABCD-EFGH" {
		t.Fatalf("normalizeCode: got %q", got)
	}
	if got := normalizeLanguage(" EN "); got != "en" {
		t.Fatalf("normalizeLanguage: got %q", got)
	}
}

func TestValidLanguage(t *testing.T) {
	valid := []string{"en", "es", "pt-br", "zh-hant"}
	for _, lang := range valid {
		if !validLanguage(lang) {
			t.Errorf("expected %q to be valid", lang)
		}
	}

	invalid := []string{"", "EN", "en_US", "a-really-long-language-tag", "en!"}
	for _, lang := range invalid {
		if validLanguage(lang) {
			t.Errorf("expected %q to be invalid", lang)
		}
	}
}
