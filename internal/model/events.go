package model

// Server-to-client event types on the websocket channel.
const (
	EventConnected      = "connected"
	EventTokenGenerated = "tokenGenerated"
	EventJoinedRoom     = "joinedRoom"
	EventWaitingForHost = "waitingForHost"
	EventNewMessage     = "newMessage"
	EventPartnerLeft    = "partnerLeft"
	EventError          = "error"
)

type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}

type TokenGeneratedPayload struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type JoinedRoomPayload struct {
	RoomID          string `json:"roomId"`
	PartnerLanguage string `json:"partnerLanguage"`
}

type WaitingForHostPayload struct {
	Token  string `json:"token"`
	RoomID string `json:"roomId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
