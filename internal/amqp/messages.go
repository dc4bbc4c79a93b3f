package amqp

import (
	"encoding/json"
	"time"
)

// ExportJobMessage is the lightweight payload published when an export job is
// queued. It carries only identifiers; the worker loads the job and expense
// data itself.
type ExportJobMessage struct {
	JobID     string    `json:"jobId"`
	Template  string    `json:"template"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExportJobMessage creates a message for the given job and template.
func NewExportJobMessage(jobID, template string) *ExportJobMessage {
	return &ExportJobMessage{
		JobID:     jobID,
		Template:  template,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportJobMessageFromJSON creates a message from JSON bytes
func ExportJobMessageFromJSON(data []byte) (*ExportJobMessage, error) {
	var msg ExportJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
