package hub

// CloseCodeAuthRequired is the reserved websocket close code for
// authentication-required/failed closure.
const CloseCodeAuthRequired = 4401

// Client -> server message types.
const (
	MessageTypeAuth = "auth"
	MessageTypePing = "ping"
)

// Server -> client message types.
const (
	MessageTypeReady = "ready"
	MessageTypeEvent = "event"
	MessageTypeError = "error"
	MessageTypePong  = "pong"
)

// ClientMessage is any inbound frame: {type:"auth", token} or {type:"ping"}.
type ClientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

// ServerMessage is the outbound envelope. Exactly one variant is populated
// per frame: ready carries userId, event carries topic+payload, error
// carries message, pong carries nothing.
type ServerMessage struct {
	Type    string      `json:"type"`
	UserID  string      `json:"userId,omitempty"`
	Topic   string      `json:"topic,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	Message string      `json:"message,omitempty"`
}

func readyMessage(userID string) ServerMessage {
	return ServerMessage{Type: MessageTypeReady, UserID: userID}
}

func eventMessage(topic string, payload interface{}) ServerMessage {
	return ServerMessage{Type: MessageTypeEvent, Topic: topic, Payload: payload}
}

func errorMessage(msg string) ServerMessage {
	return ServerMessage{Type: MessageTypeError, Message: msg}
}

func pongMessage() ServerMessage {
	return ServerMessage{Type: MessageTypePong}
}
