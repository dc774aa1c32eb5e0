package model

import "time"

type Participant struct {
	ConnID   string `json:"connId,omitempty"`
	Language string `json:"language"`
}

// Room is the paired session for exactly two participants. Host is the
// token issuer, guest the redeemer. PendingHost marks a room created by a
// redemption that arrived before the issuer bound its connection; JoinCode
// keeps the token visible to the bind-time scan and is cleared once
// pairing completes.
type Room struct {
	ID          string      `json:"id"`
	Host        Participant `json:"host"`
	Guest       Participant `json:"guest"`
	PendingHost bool        `json:"pendingHost,omitempty"`
	JoinCode    string      `json:"joinCode,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Slots returns the participant owning connID and its partner.
func (r *Room) Slots(connID string) (me, partner *Participant, ok bool) {
	if connID == "" {
		return nil, nil, false
	}
	switch connID {
	case r.Host.ConnID:
		return &r.Host, &r.Guest, true
	case r.Guest.ConnID:
		return &r.Guest, &r.Host, true
	}
	return nil, nil, false
}
