package websocket

import "encoding/json"

// Actions sent to clients.
const (
	ActionAnalysisComplete = "analysis.complete"
	ActionPong             = "pong"
	ActionError            = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Encode marshals a Message. Payloads are plain data, so marshal errors are
// reported as an error message instead.
func Encode(action string, payload interface{}) []byte {
	b, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		return NewErrorMessage(err.Error())
	}
	return b
}

// NewErrorMessage builds an error message for a client.
func NewErrorMessage(msg string) []byte {
	b, _ := json.Marshal(Message{Action: ActionError, Payload: map[string]string{"message": msg}})
	return b
}
