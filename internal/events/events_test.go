package events

import (
	"testing"
	"time"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventJobProgress)

	testEvent := &JobEvent{
		BaseEvent: BaseEvent{
			EventType: EventJobProgress,
			Time:      time.Now(),
		},
		JobID:    "job-7",
		Snapshot: &models.JobSnapshot{Status: models.StatusRunning, Progress: 42},
	}

	bus.Publish(testEvent)

	select {
	case received := <-ch:
		job, ok := received.(*JobEvent)
		if !ok {
			t.Fatal("Expected JobEvent")
		}
		if job.JobID != "job-7" {
			t.Errorf("Expected job ID 'job-7', got '%s'", job.JobID)
		}
		if job.Snapshot.Progress != 42 {
			t.Errorf("Expected progress 42, got %f", job.Snapshot.Progress)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventTransferCompleted)
	ch2 := bus.Subscribe(EventTransferCompleted)

	bus.PublishTransfer(EventTransferCompleted, "task-1", "disk.img", 1024, 1.0, 0, nil)

	received1 := false
	received2 := false

	select {
	case <-ch1:
		received1 = true
	case <-time.After(100 * time.Millisecond):
	}

	select {
	case <-ch2:
		received2 = true
	case <-time.After(100 * time.Millisecond):
	}

	if !received1 || !received2 {
		t.Error("Not all subscribers received the event")
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	jobCh := bus.Subscribe(EventJobFinished)
	transferCh := bus.Subscribe(EventTransferStarted)

	bus.PublishJob(EventJobFinished, "job-1", &models.JobSnapshot{Status: models.StatusFinished}, "")

	select {
	case <-jobCh:
	case <-time.After(100 * time.Millisecond):
		t.Error("Job subscriber didn't receive event")
	}

	select {
	case <-transferCh:
		t.Error("Transfer subscriber received wrong event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	allCh := bus.SubscribeAll()

	bus.PublishJob(EventJobSubmitted, "job-1", nil, "submitted")
	bus.PublishTransfer(EventTransferStarted, "task-1", "disk.img", 1024, 0, 0, nil)

	count := 0
	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
			count++
		case <-time.After(100 * time.Millisecond):
		}
	}

	if count != 2 {
		t.Errorf("Expected to receive 2 events, got %d", count)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	ch := bus.Subscribe(EventTransferProgress)

	for i := 0; i < 10; i++ {
		bus.PublishTransfer(EventTransferProgress, "task-1", "disk.img", 1024, float64(i)/10, 0, nil)
	}

	// Publish must not block on the full buffer; excess events are dropped.
	if bus.GetDroppedEventCount() == 0 {
		t.Error("Expected dropped events with a full buffer")
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(10 * time.Millisecond):
			goto done
		}
	}
done:

	if count == 0 {
		t.Error("Should have received at least some events")
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventJobFinished)

	bus.Close()

	_, ok := <-ch
	if ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing after close should not panic
	bus.PublishJob(EventJobFinished, "job-1", nil, "")
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventJobProgress)
	bus.Unsubscribe(EventJobProgress, ch)

	bus.PublishJob(EventJobProgress, "job-1", &models.JobSnapshot{Status: models.StatusRunning}, "")

	select {
	case <-ch:
		t.Error("Unsubscribed channel received an event")
	case <-time.After(50 * time.Millisecond):
	}
}
