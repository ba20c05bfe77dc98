// Package events carries the agent's structured event stream. Imaging and
// transfer components publish lifecycle events here; the CLI and the
// notifier subscribe instead of reaching into component internals.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/constants"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	// Imaging job lifecycle
	EventJobSubmitted EventType = "job_submitted"
	EventJobProgress  EventType = "job_progress"
	EventJobFinished  EventType = "job_finished"
	EventJobFailed    EventType = "job_failed"
	EventJobNotFound  EventType = "job_not_found"

	// Transfer batch lifecycle
	EventTransferStarted   EventType = "transfer_started"
	EventTransferProgress  EventType = "transfer_progress"
	EventTransferCompleted EventType = "transfer_completed"
	EventTransferFailed    EventType = "transfer_failed"
	EventTransferAborted   EventType = "transfer_aborted"
	EventBatchFinished     EventType = "batch_finished"

	// Inventory reconciliation after a batch
	EventInventoryUpdated EventType = "inventory_updated"
	EventRefreshPrompt    EventType = "refresh_prompt"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// JobEvent represents an imaging job lifecycle change. Snapshot is the
// status observation that triggered the event, nil for submission.
type JobEvent struct {
	BaseEvent
	JobID    string
	Snapshot *models.JobSnapshot
	Message  string
}

// TransferEvent represents a single upload's lifecycle within a batch.
type TransferEvent struct {
	BaseEvent
	TaskID   string
	Name     string
	Size     int64
	Progress float64 // 0.0 to 1.0, -1 when indeterminate
	Speed    float64 // bytes/sec
	Error    error
}

// InventoryEvent reports items that appeared on the server after a batch.
type InventoryEvent struct {
	BaseEvent
	NewItems []string
}

// RefreshPromptEvent asks the surface to offer a manual inventory refresh.
// Published instead of InventoryEvent when auto-refresh is disabled.
type RefreshPromptEvent struct {
	BaseEvent
	Uploaded int
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers. Never blocks; a full
// subscriber buffer drops the event and bumps the dropped counter.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishJob is a convenience method for publishing job lifecycle events
func (eb *EventBus) PublishJob(eventType EventType, jobID string, snapshot *models.JobSnapshot, message string) {
	eb.Publish(&JobEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Time:      time.Now(),
		},
		JobID:    jobID,
		Snapshot: snapshot,
		Message:  message,
	})
}

// PublishTransfer is a convenience method for publishing transfer events
func (eb *EventBus) PublishTransfer(eventType EventType, taskID, name string, size int64, progress, speed float64, err error) {
	eb.Publish(&TransferEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Time:      time.Now(),
		},
		TaskID:   taskID,
		Name:     name,
		Size:     size,
		Progress: progress,
		Speed:    speed,
		Error:    err,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
// This prevents memory leaks from abandoned subscriptions
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to
// full subscriber buffers.
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
