package rabbitmq

import (
	"time"

	"github.com/google/uuid"
)

// 借阅领域事件的路由键。
const (
	RoutingKeyLendingCreated  = "lending.created"
	RoutingKeyLendingReturned = "lending.returned"
)

// LendingEvent 是借阅领域事件的消息体。
// EventID 用于消费端幂等去重。
type LendingEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	OccurredAt    time.Time `json:"occurred_at"`
	LendingNumber string    `json:"lending_number"`
	ISBN          string    `json:"isbn"`
	ReaderNumber  string    `json:"reader_number"`
	FineCents     int64     `json:"fine_cents,omitempty"`
}

// NewLendingEvent 创建一条带新事件 ID 的借阅事件。
func NewLendingEvent(eventType, lendingNumber, isbn, readerNumber string) LendingEvent {
	return LendingEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		OccurredAt:    time.Now().UTC(),
		LendingNumber: lendingNumber,
		ISBN:          isbn,
		ReaderNumber:  readerNumber,
	}
}
