package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/avolve-dao/avolve-sub003/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeClaimSettled   EventType = "claim_settled"
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeStreakAdvanced EventType = "streak_advanced"
	EventTypeLedgerAdjusted EventType = "ledger_adjusted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ClaimSettledEvent is emitted after a daily claim commits.
type ClaimSettledEvent struct {
	UserID      uuid.UUID
	TokenType   string
	Amount      int64
	ChallengeID int64
	ClaimDate   time.Time
	NewStreak   int
}

func (e ClaimSettledEvent) Type() EventType {
	return EventTypeClaimSettled
}

// BalanceChangeEvent represents a committed balance change.
type BalanceChangeEvent struct {
	UserID       uuid.UUID
	TokenType    string
	ChangeAmount int64
	Reason       models.LedgerReason
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// StreakAdvancedEvent is emitted when a streak record moves forward.
type StreakAdvancedEvent struct {
	UserID        uuid.UUID
	Scope         string
	CurrentStreak int
	LongestStreak int
}

func (e StreakAdvancedEvent) Type() EventType {
	return EventTypeStreakAdvanced
}

// LedgerAdjustedEvent is emitted when a compensating entry is appended.
type LedgerAdjustedEvent struct {
	UserID    uuid.UUID
	TokenType string
	Amount    int64
}

func (e LedgerAdjustedEvent) Type() EventType {
	return EventTypeLedgerAdjusted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Handlers run asynchronously so the claim path never blocks on them.
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Events outlive the transaction context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops all pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
