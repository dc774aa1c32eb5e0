package model

// Sender roles, computed per recipient when a message is fanned out.
const (
	SenderSelf    = "self"
	SenderPartner = "partner"
)

// ChatMessage is the transient relay payload. It is delivered over live
// connections only and never persisted.
type ChatMessage struct {
	ID                string `json:"id"`
	Original          string `json:"original"`
	Translated        string `json:"translated"`
	TranslationFailed bool   `json:"translationFailed,omitempty"`
	Sender            string `json:"sender"`
	Timestamp         string `json:"timestamp"`
}
