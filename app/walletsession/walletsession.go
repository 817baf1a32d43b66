package walletsession

import (
	"context"
	"math/big"
	"reflect"
	"sync"

	"github.com/kaspanet/walletsession/domain/session"
	"github.com/kaspanet/walletsession/domain/walletprovider"
	"github.com/kaspanet/walletsession/infrastructure/notifications"
	"github.com/kaspanet/walletsession/util/units"
	"github.com/pkg/errors"
)

const (
	// ProviderNotInstalledMessage is reported when connecting without a provider.
	ProviderNotInstalledMessage = "MetaMask not installed"

	// FallbackErrorMessage is reported when a failure carries no message.
	FallbackErrorMessage = "Failed to connect"
)

// WalletSession tracks the connection between this process and a wallet
// provider: the connected account, its balance and the active network.
type WalletSession struct {
	provider walletprovider.WalletProvider
	state    *session.State
	changes  *notifications.Manager

	subscriptionsLock sync.Mutex
	subscriptions     []walletprovider.Subscription
}

// New returns a disconnected WalletSession on top of provider. A nil provider,
// including a nil pointer of a concrete provider type, is allowed and behaves
// like a host without a wallet installed.
func New(provider walletprovider.WalletProvider) *WalletSession {
	if isNilProvider(provider) {
		provider = nil
	}
	return &WalletSession{
		provider: provider,
		state:    session.NewState(),
		changes:  notifications.NewManager(),
	}
}

func isNilProvider(provider walletprovider.WalletProvider) bool {
	if provider == nil {
		return true
	}
	value := reflect.ValueOf(provider)
	switch value.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return value.IsNil()
	}
	return false
}

// IsProviderAvailable returns whether a wallet provider is present.
func (ws *WalletSession) IsProviderAvailable() bool {
	return ws.provider != nil
}

// Snapshot returns a copy of the current session state.
func (ws *WalletSession) Snapshot() *session.Snapshot {
	return ws.state.Snapshot()
}

// SubscribeChanges registers callback to receive every new session state.
func (ws *WalletSession) SubscribeChanges(callback func(snapshot *session.Snapshot)) *notifications.Subscription {
	return ws.changes.Subscribe(notifications.NTSessionChanged, func(notification *notifications.Notification) {
		callback(notification.Data.(*session.Snapshot))
	})
}

func (ws *WalletSession) update(mutate func(snapshot *session.Snapshot)) {
	snapshot := ws.state.Update(mutate)
	log.Tracef("Session changed: %s", snapshot)
	ws.changes.SendNotification(notifications.NTSessionChanged, snapshot)
}

// Connect requests account access, then reads the network and the balance of
// the first authorized account. Each result is applied to the session as soon
// as it arrives, so a failure in a later step leaves earlier results in place.
//
// Failures are never returned as Go errors: they are stored in the session's
// LastError and returned as the ConnectError half of the result.
func (ws *WalletSession) Connect(ctx context.Context) (*session.ConnectSuccess, *session.ConnectError) {
	if !ws.IsProviderAvailable() {
		connectErr := &session.ConnectError{
			Kind:    session.KindProviderUnavailable,
			Message: ProviderNotInstalledMessage,
		}
		log.Warnf("Cannot connect: %s", connectErr.Message)
		ws.update(func(snapshot *session.Snapshot) {
			snapshot.LastError = connectErr
		})
		return nil, connectErr
	}

	ws.update(func(snapshot *session.Snapshot) {
		snapshot.Connecting = true
		snapshot.LastError = nil
	})
	defer ws.update(func(snapshot *session.Snapshot) {
		snapshot.Connecting = false
	})

	success, err := ws.connect(ctx)
	if err != nil {
		connectErr := toConnectError(err)
		log.Warnf("Connect failed: %+v", err)
		ws.update(func(snapshot *session.Snapshot) {
			snapshot.LastError = connectErr
			snapshot.Connected = false
		})
		return nil, connectErr
	}

	log.Infof("Connected to %s on network %s, balance %s", success.Address, success.NetworkID, success.Balance)
	return success, nil
}

func (ws *WalletSession) connect(ctx context.Context) (*session.ConnectSuccess, error) {
	var accounts []string
	err := awaitProvider(ctx, func() (err error) {
		accounts, err = ws.provider.RequestAccounts(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "error requesting accounts")
	}
	if len(accounts) == 0 {
		return nil, errors.New("no accounts returned by the wallet")
	}
	address := accounts[0]
	ws.update(func(snapshot *session.Snapshot) {
		snapshot.SelectAccount(address)
	})

	var networkID string
	err = awaitProvider(ctx, func() (err error) {
		networkID, err = ws.provider.NetworkID(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting the network")
	}
	ws.update(func(snapshot *session.Snapshot) {
		snapshot.NetworkID = &networkID
	})

	var balanceWei *big.Int
	err = awaitProvider(ctx, func() (err error) {
		balanceWei, err = ws.provider.Balance(ctx, address)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting the balance of %s", address)
	}
	balance := units.FormatEther(balanceWei)
	ws.update(func(snapshot *session.Snapshot) {
		snapshot.Balance = &balance
	})

	return &session.ConnectSuccess{
		Address:   address,
		NetworkID: networkID,
		Balance:   balance,
	}, nil
}

// awaitProvider runs call and waits for it or for ctx, whichever is first.
// A provider that never answers would otherwise leave the session connecting
// forever. A panic inside call is returned as an error.
func awaitProvider(ctx context.Context, call func() error) error {
	done := make(chan error, 1)
	spawn("awaitProvider", func() {
		done <- callProvider(call)
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func callProvider(call func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.Errorf("wallet provider panicked: %v", recovered)
		}
	}()
	return call()
}

func toConnectError(err error) *session.ConnectError {
	connectErr := &session.ConnectError{Kind: session.KindRequestFailed}

	var providerErr *walletprovider.ProviderError
	if errors.As(err, &providerErr) {
		if providerErr.IsUserRejection() {
			connectErr.Kind = session.KindUserRejected
		}
		connectErr.Message = providerErr.Message
	} else {
		connectErr.Message = errors.Cause(err).Error()
	}

	if connectErr.Message == "" {
		connectErr.Message = FallbackErrorMessage
	}
	return connectErr
}

// Disconnect forgets the connected account, its balance and network.
// LastError and the provider subscriptions are left alone.
func (ws *WalletSession) Disconnect() {
	ws.update(func(snapshot *session.Snapshot) {
		snapshot.ClearAccount()
	})
}
