package walletprovider

import (
	"context"
	"fmt"
	"math/big"
)

// Names of the events a WalletProvider emits.
const (
	// EventAccountsChanged carries a []string, first entry is the selected account.
	EventAccountsChanged = "accountsChanged"

	// EventChainChanged carries the new network identifier as a string.
	EventChainChanged = "chainChanged"
)

// CodeUserRejected is the provider error code for a request the user declined.
const CodeUserRejected = 4001

// EventHandler receives the payload of a provider event.
type EventHandler func(payload interface{})

// Subscription is a registered EventHandler.
type Subscription interface {
	Unsubscribe()
}

// WalletProvider is the wallet a session talks to. It owns the accounts,
// the transport and the change notifications.
type WalletProvider interface {
	// RequestAccounts asks the wallet for account access and returns the
	// authorized accounts, selected account first.
	RequestAccounts(ctx context.Context) ([]string, error)

	// NetworkID returns the identifier of the network the wallet is on.
	NetworkID(ctx context.Context) (string, error)

	// Balance returns the balance of address in the smallest unit.
	Balance(ctx context.Context, address string) (*big.Int, error)

	// Subscribe registers handler for eventName until the returned
	// Subscription is released.
	Subscribe(eventName string, handler EventHandler) (Subscription, error)
}

// ProviderError is an error reported by the wallet itself, as opposed to a
// failure reaching it.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// IsUserRejection returns whether the user declined the request.
func (e *ProviderError) IsUserRejection() bool {
	return e.Code == CodeUserRejected
}
