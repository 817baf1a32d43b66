package walletsession

import (
	"context"
	"math/big"

	"github.com/kaspanet/walletsession/domain/walletprovider"
	"github.com/kaspanet/walletsession/infrastructure/notifications"
	"github.com/pkg/errors"
)

type mockProvider struct {
	accounts  []string
	networkID string
	balance   *big.Int

	requestAccountsErr error
	networkIDErr       error
	balanceErr         error
	subscribeErrs      map[string]error

	// When set, RequestAccounts panics with it.
	requestAccountsPanic interface{}

	// When set, RequestAccounts waits for it to be closed or for its context.
	blockRequestAccounts chan struct{}

	notificationManager *notifications.Manager
	balanceQueries      []string
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		accounts:            []string{"0xABC"},
		networkID:           "1",
		balance:             new(big.Int).SetUint64(1000000000000000000),
		notificationManager: notifications.NewManager(),
	}
}

func (mp *mockProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if mp.blockRequestAccounts != nil {
		select {
		case <-mp.blockRequestAccounts:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if mp.requestAccountsPanic != nil {
		panic(mp.requestAccountsPanic)
	}
	if mp.requestAccountsErr != nil {
		return nil, mp.requestAccountsErr
	}
	return mp.accounts, nil
}

func (mp *mockProvider) NetworkID(context.Context) (string, error) {
	if mp.networkIDErr != nil {
		return "", mp.networkIDErr
	}
	return mp.networkID, nil
}

func (mp *mockProvider) Balance(_ context.Context, address string) (*big.Int, error) {
	mp.balanceQueries = append(mp.balanceQueries, address)
	if mp.balanceErr != nil {
		return nil, mp.balanceErr
	}
	return mp.balance, nil
}

func (mp *mockProvider) Subscribe(eventName string, handler walletprovider.EventHandler) (walletprovider.Subscription, error) {
	if err, ok := mp.subscribeErrs[eventName]; ok {
		return nil, err
	}
	typ, ok := notifications.TypeFromEventName(eventName)
	if !ok {
		return nil, errors.Errorf("unknown event %s", eventName)
	}
	return mp.notificationManager.Subscribe(typ, func(notification *notifications.Notification) {
		handler(notification.Data)
	}), nil
}

func (mp *mockProvider) emit(eventName string, payload interface{}) {
	typ, ok := notifications.TypeFromEventName(eventName)
	if !ok {
		panic("unknown event " + eventName)
	}
	mp.notificationManager.SendNotification(typ, payload)
}

func (mp *mockProvider) subscriberCount(eventName string) int {
	typ, _ := notifications.TypeFromEventName(eventName)
	return mp.notificationManager.SubscriberCount(typ)
}
