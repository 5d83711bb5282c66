package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entities and operations carried by RecordChangedMessage.
const (
	EntityExpense  = "expense"
	EntityBudget   = "budget"
	EntityCategory = "category"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// RecordChangedMessage announces a write to one of the record collections.
// It only identifies the record; consumers reload whatever they need.
// Date is the expense date (YYYY-MM-DD) when the record is an expense.
type RecordChangedMessage struct {
	Entity    string    `json:"entity"`
	Operation string    `json:"operation"`
	ID        string    `json:"id"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(entity, operation, id string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Entity:    entity,
		Operation: operation,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes a message and checks it names an
// entity and an id.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Entity {
	case EntityExpense, EntityBudget, EntityCategory:
	default:
		return nil, fmt.Errorf("unknown entity %q", msg.Entity)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message without id")
	}
	return &msg, nil
}
