package session

import (
	"fmt"
	"strings"
	"sync"
)

// ErrorKind classifies why a connect attempt failed.
type ErrorKind int

const (
	// KindProviderUnavailable means no wallet provider is installed.
	KindProviderUnavailable ErrorKind = iota

	// KindUserRejected means the user declined the account access request.
	KindUserRejected

	// KindRequestFailed covers every other failure while connecting,
	// including network and balance queries.
	KindRequestFailed
)

var errorKindStrings = map[ErrorKind]string{
	KindProviderUnavailable: "ProviderUnavailable",
	KindUserRejected:        "UserRejected",
	KindRequestFailed:       "RequestFailed",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorKind (%d)", int(k))
}

// ConnectError is the failure half of a connect result.
type ConnectError struct {
	Kind    ErrorKind
	Message string
}

func (e *ConnectError) Error() string {
	return e.Message
}

// ConnectSuccess is the success half of a connect result.
type ConnectSuccess struct {
	Address   string
	NetworkID string
	Balance   string
}

// Snapshot is a point in time copy of a wallet session.
//
// Connected is true iff Address is set, except after a connect attempt that
// failed once the address had been obtained: the address is kept while
// Connected is false.
type Snapshot struct {
	Address    *string
	Balance    *string
	NetworkID  *string
	Connected  bool
	Connecting bool
	LastError  *ConnectError
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	clone := &Snapshot{
		Address:    clonePtr(s.Address),
		Balance:    clonePtr(s.Balance),
		NetworkID:  clonePtr(s.NetworkID),
		Connected:  s.Connected,
		Connecting: s.Connecting,
	}
	if s.LastError != nil {
		lastError := *s.LastError
		clone.LastError = &lastError
	}
	return clone
}

// ClearAccount drops everything known about the connected account.
// LastError is kept.
func (s *Snapshot) ClearAccount() {
	s.Address = nil
	s.Balance = nil
	s.NetworkID = nil
	s.Connected = false
}

// SelectAccount makes address the connected account without touching the
// balance or network.
func (s *Snapshot) SelectAccount(address string) {
	s.Address = &address
	s.Connected = true
}

func (s *Snapshot) String() string {
	fields := []string{
		"address=" + valueOrAbsent(s.Address),
		"balance=" + valueOrAbsent(s.Balance),
		"network=" + valueOrAbsent(s.NetworkID),
		fmt.Sprintf("connected=%t", s.Connected),
		fmt.Sprintf("connecting=%t", s.Connecting),
	}
	if s.LastError != nil {
		fields = append(fields, fmt.Sprintf("error=%s(%q)", s.LastError.Kind, s.LastError.Message))
	}
	return strings.Join(fields, " ")
}

// State holds the live session. It is safe for concurrent use.
type State struct {
	snapshot Snapshot
	lock     sync.RWMutex
}

// NewState returns an empty, disconnected session state.
func NewState() *State {
	return &State{}
}

// Snapshot returns a copy of the current state.
func (st *State) Snapshot() *Snapshot {
	st.lock.RLock()
	defer st.lock.RUnlock()
	return st.snapshot.Clone()
}

// Update applies mutate under the state lock and returns a copy of the
// resulting state.
func (st *State) Update(mutate func(snapshot *Snapshot)) *Snapshot {
	st.lock.Lock()
	defer st.lock.Unlock()
	mutate(&st.snapshot)
	return st.snapshot.Clone()
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	value := *s
	return &value
}

func valueOrAbsent(s *string) string {
	if s == nil {
		return "<absent>"
	}
	return *s
}
