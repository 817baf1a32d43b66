package router

import (
	"sync"

	"github.com/kaspanet/walletsession/infrastructure/notifications"
	"github.com/pkg/errors"
)

const (
	maxNotifications = 100
)

// ErrRouteClosed indicates that a route was closed while reading/writing.
var ErrRouteClosed = errors.New("route is closed")

// OnCapacityReachedHandler is a function that is to be
// called when a route reaches capacity.
type OnCapacityReachedHandler func()

// Route carries notifications from the goroutine that produces them to a
// single consumer.
type Route struct {
	channel   chan *notifications.Notification
	closed    bool
	closeLock sync.Mutex

	onCapacityReachedHandler OnCapacityReachedHandler
}

// NewRoute create a new Route
func NewRoute(onCapacityReachedHandler OnCapacityReachedHandler) *Route {
	if onCapacityReachedHandler == nil {
		onCapacityReachedHandler = func() {}
	}
	return &Route{
		channel:                  make(chan *notifications.Notification, maxNotifications),
		closed:                   false,
		onCapacityReachedHandler: onCapacityReachedHandler,
	}
}

// Enqueue enqueues a notification to the Route
func (r *Route) Enqueue(notification *notifications.Notification) error {
	r.closeLock.Lock()
	defer r.closeLock.Unlock()

	if r.closed {
		return errors.WithStack(ErrRouteClosed)
	}
	if len(r.channel) == maxNotifications {
		r.onCapacityReachedHandler()
	}
	r.channel <- notification
	return nil
}

// Dequeue dequeues a notification from the Route
func (r *Route) Dequeue() (*notifications.Notification, error) {
	notification, isOpen := <-r.channel
	if !isOpen {
		return nil, errors.WithStack(ErrRouteClosed)
	}
	return notification, nil
}

// Close closes this route
func (r *Route) Close() {
	r.closeLock.Lock()
	defer r.closeLock.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	close(r.channel)
}
