package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType doubles as the routing key on the topic exchange.
type EventType string

const (
	EventExpenseAdded   EventType = "expense.added"
	EventExpenseDeleted EventType = "expense.deleted"
	EventIncomeLocked   EventType = "income.locked"
	EventAccountDeleted EventType = "account.deleted"
)

// Event announces a mutation the client made on the remote API. Events never
// carry the bearer token or the user's email.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ExpenseID string    `json:"expenseId,omitempty"`
	Name      string    `json:"name,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(t EventType) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
