package store

// Key families. Tokens and rooms hold JSON records; conn keys hold the
// bare room id a connection currently belongs to.
const (
	TokenKeyPrefix = "token:"
	RoomKeyPrefix  = "room:"
	ConnKeyPrefix  = "conn:"
)

func TokenKey(code string) string {
	return TokenKeyPrefix + code
}

func RoomKey(roomID string) string {
	return RoomKeyPrefix + roomID
}

func ConnKey(connID string) string {
	return ConnKeyPrefix + connID
}
