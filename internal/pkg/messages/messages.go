package messages

import (
	amessages "github.com/airenas/async-api/pkg/messages"
)

const (
	st = "TEACHER/"
	// Check queue name for recording checking jobs
	Check = st + "Check"
	// StatusChange queue name
	StatusChange = st + "StatusChange"
	// Inform queue name
	Inform = st + "Inform"
)

// CheckMessage is the main message passing through the checking pipeline.
// ID keeps the numeric recording id as string
type CheckMessage struct {
	amessages.QueueMessage
	RequestID string `json:"requestID,omitempty"`
}

// NewMessageFrom creates a copy of a message
func NewMessageFrom(m *CheckMessage) *CheckMessage {
	return &CheckMessage{QueueMessage: m.QueueMessage, RequestID: m.RequestID}
}
