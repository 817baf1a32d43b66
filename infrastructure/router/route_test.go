package router

import (
	"testing"
	"time"

	"github.com/kaspanet/walletsession/infrastructure/notifications"
	"github.com/pkg/errors"
)

func TestRouteEnqueueDequeue(t *testing.T) {
	route := NewRoute(nil)

	err := route.Enqueue(&notifications.Notification{Type: notifications.NTChainChanged, Data: "1"})
	if err != nil {
		t.Fatalf("TestRouteEnqueueDequeue: Enqueue: %s", err)
	}
	notification, err := route.Dequeue()
	if err != nil {
		t.Fatalf("TestRouteEnqueueDequeue: Dequeue: %s", err)
	}
	if notification.Data.(string) != "1" {
		t.Fatalf("TestRouteEnqueueDequeue: got data %v, expected 1", notification.Data)
	}

	// Notifications queued before Close are still delivered.
	err = route.Enqueue(&notifications.Notification{Type: notifications.NTChainChanged, Data: "5"})
	if err != nil {
		t.Fatalf("TestRouteEnqueueDequeue: Enqueue: %s", err)
	}
	route.Close()
	notification, err = route.Dequeue()
	if err != nil || notification.Data.(string) != "5" {
		t.Fatalf("TestRouteEnqueueDequeue: got %v, %v after close, expected 5", notification, err)
	}
	_, err = route.Dequeue()
	if !errors.Is(err, ErrRouteClosed) {
		t.Fatalf("TestRouteEnqueueDequeue: expected ErrRouteClosed, got %v", err)
	}
}

func TestRouteClose(t *testing.T) {
	route := NewRoute(nil)
	route.Close()
	route.Close()

	err := route.Enqueue(&notifications.Notification{})
	if !errors.Is(err, ErrRouteClosed) {
		t.Fatalf("TestRouteClose: Enqueue after close: expected ErrRouteClosed, got %v", err)
	}
	_, err = route.Dequeue()
	if !errors.Is(err, ErrRouteClosed) {
		t.Fatalf("TestRouteClose: Dequeue after close: expected ErrRouteClosed, got %v", err)
	}
}

func TestRouteCapacityHandler(t *testing.T) {
	capacityReached := make(chan struct{}, 1)
	route := NewRoute(func() { capacityReached <- struct{}{} })
	for i := 0; i < maxNotifications; i++ {
		err := route.Enqueue(&notifications.Notification{})
		if err != nil {
			t.Fatalf("TestRouteCapacityHandler: Enqueue: %s", err)
		}
	}
	select {
	case <-capacityReached:
		t.Fatalf("TestRouteCapacityHandler: handler called before the route was full")
	default:
	}

	done := make(chan struct{})
	go func() {
		_ = route.Enqueue(&notifications.Notification{})
		close(done)
	}()
	select {
	case <-capacityReached:
	case <-time.After(time.Second):
		t.Fatalf("TestRouteCapacityHandler: handler was not called on a full route")
	}
	_, err := route.Dequeue()
	if err != nil {
		t.Fatalf("TestRouteCapacityHandler: Dequeue: %s", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("TestRouteCapacityHandler: blocked enqueue never completed")
	}
}
