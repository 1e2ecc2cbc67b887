package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"lexify/internal/core"
)

// ChangeMessage announces one committed write. It only carries the record
// identity; consumers read the record itself from the store.
type ChangeMessage struct {
	Kind      core.RecordKind `json:"kind"`
	Op        core.ChangeOp   `json:"op"`
	ID        int64           `json:"id"`
	Day       string          `json:"day,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewChangeMessage builds the message for c, stamped with the current time.
func NewChangeMessage(c core.Change) *ChangeMessage {
	msg := &ChangeMessage{
		Kind:      c.Kind,
		Op:        c.Op,
		ID:        c.ID,
		Timestamp: time.Now(),
	}
	if !c.Date.IsZero() {
		msg.Day = c.Date.Format(time.DateOnly)
	}
	return msg
}

// Validate rejects messages that no consumer could act on.
func (m *ChangeMessage) Validate() error {
	switch m.Kind {
	case core.KindTask, core.KindIncome, core.KindExpense:
	default:
		return fmt.Errorf("unknown record kind %q", m.Kind)
	}
	switch m.Op {
	case core.OpUpsert, core.OpDelete:
	default:
		return fmt.Errorf("unknown change op %q", m.Op)
	}
	if m.ID <= 0 {
		return fmt.Errorf("invalid record id %d", m.ID)
	}
	return nil
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes and validates a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
