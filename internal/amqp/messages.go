package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"pocketbook/internal/core"
)

// TransactionRecordedMessage announces a transaction added through the
// keypad. It carries the full transaction so consumers need no access to
// the store.
type TransactionRecordedMessage struct {
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewTransactionRecordedMessage(tx core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		Transaction: tx,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes and validates a message body.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Transaction.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction %q: %w", msg.Transaction.ID, err)
	}
	return &msg, nil
}
