// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notifications

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// NotificationType represents the type of a notification message.
type NotificationType int

// NotificationCallback is used for a caller to provide a callback for
// notifications about wallet events.
type NotificationCallback func(*Notification)

// Constants for the type of a notification message.
const (
	// NTAccountsChanged indicates the set of accounts exposed by the
	// wallet has changed. Data is a []string, first entry is the
	// selected account. An empty list means the wallet was locked or
	// the site lost access.
	NTAccountsChanged NotificationType = iota

	// NTChainChanged indicates the wallet switched networks.
	// Data is the new network identifier as a string.
	NTChainChanged

	// NTSessionChanged indicates the state of a wallet session changed.
	// Data is the new session snapshot.
	NTSessionChanged
)

// notificationTypeStrings is a map of notification types back to their constant
// names for pretty printing.
var notificationTypeStrings = map[NotificationType]string{
	NTAccountsChanged: "NTAccountsChanged",
	NTChainChanged:    "NTChainChanged",
	NTSessionChanged:  "NTSessionChanged",
}

// eventNames maps wallet event names to their notification types.
var eventNames = map[string]NotificationType{
	"accountsChanged": NTAccountsChanged,
	"chainChanged":    NTChainChanged,
}

// String returns the NotificationType in human-readable form.
func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Notification Type (%d)", int(n))
}

// TypeFromEventName returns the notification type of a wallet event name
// such as "accountsChanged".
func TypeFromEventName(eventName string) (NotificationType, bool) {
	typ, ok := eventNames[eventName]
	return typ, ok
}

// Notification defines notification that is sent to the caller via the callback
// function provided during the call to Subscribe and consists of a notification type
// as well as associated data that depends on the type as follows:
// 	- AccountsChanged: []string
// 	- ChainChanged:    string
// 	- SessionChanged:  *session.Snapshot
type Notification struct {
	Type NotificationType
	Data interface{}
}

type registeredCallback struct {
	id       uint64
	callback NotificationCallback
	released int32 // atomic
}

func (r *registeredCallback) isReleased() bool {
	return atomic.LoadInt32(&r.released) != 0
}

// Manager dispatches notifications to subscribed callbacks.
//
// Callbacks run outside of the manager's lock, so a callback may subscribe or
// unsubscribe any callback, itself included. Once Unsubscribe returns no new
// invocation of the released callback starts.
type Manager struct {
	callbacks map[NotificationType][]*registeredCallback
	nextID    uint64
	sync.RWMutex
}

// NewManager returns a new notification Manager
func NewManager() *Manager {
	return &Manager{
		callbacks: make(map[NotificationType][]*registeredCallback),
	}
}

// Subscription is a handle to a registered callback.
type Subscription struct {
	manager    *Manager
	typ        NotificationType
	registered *registeredCallback
	once       sync.Once
}

// Unsubscribe releases the callback. Calling it more than once has no
// further effect.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		atomic.StoreInt32(&s.registered.released, 1)
		s.manager.remove(s.typ, s.registered.id)
	})
}

// Subscribe registers a callback to be executed when a notification of the
// given type is sent. The returned Subscription releases it.
func (m *Manager) Subscribe(typ NotificationType, callback NotificationCallback) *Subscription {
	m.Lock()
	defer m.Unlock()

	m.nextID++
	registered := &registeredCallback{id: m.nextID, callback: callback}
	m.callbacks[typ] = append(m.callbacks[typ], registered)
	return &Subscription{manager: m, typ: typ, registered: registered}
}

func (m *Manager) remove(typ NotificationType, id uint64) {
	m.Lock()
	defer m.Unlock()

	callbacks := m.callbacks[typ]
	for i, registered := range callbacks {
		if registered.id == id {
			m.callbacks[typ] = append(callbacks[:i:i], callbacks[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of callbacks registered for typ.
func (m *Manager) SubscriberCount(typ NotificationType) int {
	m.RLock()
	defer m.RUnlock()
	return len(m.callbacks[typ])
}

// SendNotification sends a notification with the passed type and data to
// every callback subscribed to that type, in subscription order. Callbacks
// released while the notification is being delivered are skipped.
func (m *Manager) SendNotification(typ NotificationType, data interface{}) {
	m.RLock()
	callbacks := m.callbacks[typ]
	m.RUnlock()

	n := Notification{Type: typ, Data: data}
	for _, registered := range callbacks {
		if registered.isReleased() {
			continue
		}
		registered.callback(&n)
	}
}
