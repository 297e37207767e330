package amqp

import (
	"encoding/json"
	"time"

	"moneta/internal/store"
)

// SnapshotSavedMessage announces that a new snapshot was written. It only
// carries the storage key and revision; the worker reads the snapshot
// itself from the shared storage.
type SnapshotSavedMessage struct {
	Key          string    `json:"key"`
	Revision     uint64    `json:"revision"`
	Transactions int       `json:"transactions"`
	Categories   int       `json:"categories"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewSnapshotSavedMessage builds a message from the store notification.
func NewSnapshotSavedMessage(info store.SnapshotInfo) *SnapshotSavedMessage {
	ts := info.SavedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return &SnapshotSavedMessage{
		Key:          info.Key,
		Revision:     info.Revision,
		Transactions: info.Transactions,
		Categories:   info.Categories,
		Timestamp:    ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSavedMessageFromJSON creates a message from JSON bytes
func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
