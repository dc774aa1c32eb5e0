package model

import "time"

// JoinToken is a single-use credential that authorizes one redemption into
// a room. IssuerConnID stays empty when the token was issued over plain
// HTTP before the issuer opened its websocket; listenForToken fills it in.
type JoinToken struct {
	Code           string    `json:"code"`
	IssuerConnID   string    `json:"issuerConnId,omitempty"`
	IssuerLanguage string    `json:"issuerLanguage"`
	CreatedAt      time.Time `json:"createdAt"`
}
