package ethprovider

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/kaspanet/walletsession/domain/walletprovider"
	"github.com/kaspanet/walletsession/infrastructure/logger"
	"github.com/kaspanet/walletsession/infrastructure/notifications"
	"github.com/pkg/errors"
)

// DefaultPollInterval is used when no poll interval is configured.
const DefaultPollInterval = 2 * time.Second

// Provider is a walletprovider.WalletProvider backed by an Ethereum
// JSON-RPC endpoint: a wallet, or a node that manages accounts.
type Provider struct {
	rpcClient           *rpc.Client
	ethClient           *ethclient.Client
	notificationManager *notifications.Manager
	pollInterval        time.Duration

	stateLock     sync.Mutex
	lastAccounts  []string
	lastNetworkID string

	stop              chan struct{}
	stopped           sync.WaitGroup
	started, shutdown int32
}

// New returns a Provider on top of an established RPC client.
func New(rpcClient *rpc.Client, pollInterval time.Duration) *Provider {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Provider{
		rpcClient:           rpcClient,
		ethClient:           ethclient.NewClient(rpcClient),
		notificationManager: notifications.NewManager(),
		pollInterval:        pollInterval,
		stop:                make(chan struct{}),
	}
}

// RequestAccounts sends eth_requestAccounts. Endpoints that don't know the
// method, such as plain nodes, are asked for eth_accounts instead.
func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	accounts, err := p.callAccounts(ctx, "eth_requestAccounts")
	if isMethodNotFound(err) {
		log.Debugf("eth_requestAccounts is not supported, falling back to eth_accounts")
		accounts, err = p.callAccounts(ctx, "eth_accounts")
	}
	if err != nil {
		return nil, convertRPCError(err)
	}
	return accounts, nil
}

func (p *Provider) callAccounts(ctx context.Context, method string) ([]string, error) {
	var addresses []common.Address
	err := p.rpcClient.CallContext(ctx, &addresses, method)
	if err != nil {
		return nil, errors.Wrapf(err, "error calling %s", method)
	}
	log.Tracef("%s returned %s", method, logger.NewLogClosure(func() string {
		return spew.Sdump(addresses)
	}))

	accounts := make([]string, len(addresses))
	for i, address := range addresses {
		accounts[i] = address.Hex()
	}
	return accounts, nil
}

// NetworkID returns the chain ID of the endpoint in decimal.
func (p *Provider) NetworkID(ctx context.Context) (string, error) {
	chainID, err := p.ethClient.ChainID(ctx)
	if err != nil {
		return "", convertRPCError(errors.Wrap(err, "error calling eth_chainId"))
	}
	return chainID.String(), nil
}

// Balance returns the latest balance of address in wei.
func (p *Provider) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.Errorf("%s is not a valid address", address)
	}
	balance, err := p.ethClient.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, convertRPCError(errors.Wrapf(err, "error calling eth_getBalance for %s", address))
	}
	return balance, nil
}

// Subscribe registers handler for eventName. Events are produced while the
// provider is started.
func (p *Provider) Subscribe(eventName string, handler walletprovider.EventHandler) (walletprovider.Subscription, error) {
	typ, ok := notifications.TypeFromEventName(eventName)
	if !ok {
		return nil, errors.Errorf("unsupported event %s", eventName)
	}
	return p.notificationManager.Subscribe(typ, func(notification *notifications.Notification) {
		handler(notification.Data)
	}), nil
}

// Start records the current accounts and network and begins watching them
// for changes.
func (p *Provider) Start(ctx context.Context) error {
	// Already started?
	if atomic.AddInt32(&p.started, 1) != 1 {
		return nil
	}

	err := p.poll(ctx, false)
	if err != nil {
		atomic.StoreInt32(&p.started, 0)
		return err
	}

	p.stopped.Add(1)
	spawn("ethprovider.watch", p.watch)
	return nil
}

// Stop stops the watcher and closes the RPC client.
func (p *Provider) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&p.shutdown, 1) != 1 {
		return
	}
	close(p.stop)
	p.stopped.Wait()
	p.rpcClient.Close()
}
