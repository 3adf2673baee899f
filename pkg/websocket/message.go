package websocket

import "time"

// Envelope - конверт сообщения: тип подсказывает фронтенду, что делать с payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
