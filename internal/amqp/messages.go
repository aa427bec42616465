package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangeMessage announces that the ledger was rewritten after a mutation.
// Consumers reload the ledger themselves; the message only says what changed.
type LedgerChangeMessage struct {
	Operation     string    `json:"operation"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Count         int       `json:"count"` // records in the ledger after the change
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerChangeMessage creates a change message stamped with the current time
func NewLedgerChangeMessage(operation, transactionID string, count int) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Operation:     operation,
		TransactionID: transactionID,
		Count:         count,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeMessageFromJSON creates a message from JSON bytes
func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
