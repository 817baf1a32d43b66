package walletsession

import (
	"github.com/kaspanet/walletsession/domain/session"
	"github.com/kaspanet/walletsession/domain/walletprovider"
	"github.com/pkg/errors"
)

type handlerFunc func(ws *WalletSession, payload interface{}) error

var eventHandlers = map[string]handlerFunc{
	walletprovider.EventAccountsChanged: handleAccountsChanged,
	walletprovider.EventChainChanged:    handleChainChanged,
}

func handleAccountsChanged(ws *WalletSession, payload interface{}) error {
	accounts, ok := payload.([]string)
	if !ok {
		return errors.Errorf("unexpected %s payload of type %T", walletprovider.EventAccountsChanged, payload)
	}
	ws.HandleAccountsChanged(accounts)
	return nil
}

func handleChainChanged(ws *WalletSession, payload interface{}) error {
	networkID, ok := payload.(string)
	if !ok {
		return errors.Errorf("unexpected %s payload of type %T", walletprovider.EventChainChanged, payload)
	}
	ws.HandleChainChanged(networkID)
	return nil
}

// HandleAccountsChanged applies an accounts change reported by the wallet.
// An empty list disconnects. Otherwise the first account becomes the
// connected one; balance and network are not refreshed.
func (ws *WalletSession) HandleAccountsChanged(accounts []string) {
	if len(accounts) == 0 {
		log.Infof("Wallet reported no accounts, disconnecting")
		ws.Disconnect()
		return
	}
	log.Infof("Wallet switched account to %s", accounts[0])
	ws.update(func(snapshot *session.Snapshot) {
		snapshot.SelectAccount(accounts[0])
	})
}

// HandleChainChanged applies a network change reported by the wallet.
func (ws *WalletSession) HandleChainChanged(networkID string) {
	log.Infof("Wallet switched network to %s", networkID)
	ws.update(func(snapshot *session.Snapshot) {
		snapshot.NetworkID = &networkID
	})
}

// Activate subscribes the session to the provider's change notifications.
// Activating an already active session does nothing. Without a provider there
// is nothing to subscribe to.
func (ws *WalletSession) Activate() error {
	if !ws.IsProviderAvailable() {
		return nil
	}

	ws.subscriptionsLock.Lock()
	defer ws.subscriptionsLock.Unlock()

	if ws.subscriptions != nil {
		return nil
	}

	subscriptions := make([]walletprovider.Subscription, 0, len(eventHandlers))
	for eventName, handler := range eventHandlers {
		eventName, handler := eventName, handler
		subscription, err := ws.provider.Subscribe(eventName, func(payload interface{}) {
			err := handler(ws, payload)
			if err != nil {
				log.Warnf("Ignoring %s notification: %s", eventName, err)
			}
		})
		if err != nil {
			for _, acquired := range subscriptions {
				acquired.Unsubscribe()
			}
			return errors.Wrapf(err, "error subscribing to %s", eventName)
		}
		subscriptions = append(subscriptions, subscription)
	}
	ws.subscriptions = subscriptions
	log.Debugf("Session activated with %d provider subscriptions", len(subscriptions))
	return nil
}

// Deactivate releases the subscriptions taken by Activate. No provider
// notification reaches the session once it returns.
func (ws *WalletSession) Deactivate() {
	ws.subscriptionsLock.Lock()
	defer ws.subscriptionsLock.Unlock()

	for _, subscription := range ws.subscriptions {
		subscription.Unsubscribe()
	}
	if ws.subscriptions != nil {
		log.Debugf("Session deactivated")
	}
	ws.subscriptions = nil
}
