package main

import (
	"sync/atomic"

	"github.com/kaspanet/walletsession/app/walletsession"
	"github.com/kaspanet/walletsession/domain/session"
	"github.com/kaspanet/walletsession/infrastructure/config"
	"github.com/kaspanet/walletsession/infrastructure/notifications"
	"github.com/kaspanet/walletsession/infrastructure/provider/ethprovider"
	"github.com/kaspanet/walletsession/infrastructure/router"
	"github.com/pkg/errors"
)

// walletApp wires a wallet session to an Ethereum provider and renders
// every change of the session.
type walletApp struct {
	cfg      *config.Config
	provider *ethprovider.Provider
	session  *walletsession.WalletSession
	renderer *renderer

	changes             *router.Route
	changesSubscription *notifications.Subscription
	renderDone          chan struct{}

	started, shutdown int32
}

func newWalletApp(cfg *config.Config, renderer *renderer) (*walletApp, error) {
	ctx, cancel := cfg.ConnectContext()
	defer cancel()

	provider, err := ethprovider.Dial(ctx, cfg.ProviderConfig())
	if err != nil {
		return nil, err
	}

	return &walletApp{
		cfg:      cfg,
		provider: provider,
		session:  walletsession.New(provider),
		renderer: renderer,
		changes: router.NewRoute(func() {
			log.Warnf("Session changes are arriving faster than they are rendered")
		}),
		renderDone: make(chan struct{}),
	}, nil
}

// start launches the provider watcher, subscribes the session and, unless
// disabled, connects.
func (a *walletApp) start() error {
	// Already started?
	if atomic.AddInt32(&a.started, 1) != 1 {
		return nil
	}

	a.changesSubscription = a.session.SubscribeChanges(func(snapshot *session.Snapshot) {
		err := a.changes.Enqueue(&notifications.Notification{
			Type: notifications.NTSessionChanged,
			Data: snapshot,
		})
		if err != nil {
			log.Debugf("Dropping session change: %s", err)
		}
	})
	spawn("walletApp.render", a.render)
	a.renderer.render(a.session.Snapshot())

	ctx, cancel := a.cfg.ConnectContext()
	defer cancel()
	err := a.provider.Start(ctx)
	if err != nil {
		return errors.Wrap(err, "error starting the wallet provider")
	}

	err = a.session.Activate()
	if err != nil {
		return err
	}

	if !a.cfg.NoConnect {
		spawn("walletApp.connect", a.connect)
	}
	return nil
}

func (a *walletApp) connect() {
	ctx, cancel := a.cfg.ConnectContext()
	defer cancel()

	_, connectErr := a.session.Connect(ctx)
	if connectErr != nil {
		log.Errorf("Could not connect to the wallet (%s): %s", connectErr.Kind, connectErr.Message)
	}
}

func (a *walletApp) render() {
	defer close(a.renderDone)
	for {
		notification, err := a.changes.Dequeue()
		if err != nil {
			return
		}
		a.renderer.render(notification.Data.(*session.Snapshot))
	}
}

// stop releases the session subscriptions and shuts the provider down.
func (a *walletApp) stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("walletsession is already in the process of shutting down")
		return
	}

	a.session.Deactivate()
	if a.changesSubscription != nil {
		a.changesSubscription.Unsubscribe()
		a.changes.Close()
		<-a.renderDone
	}
	a.provider.Stop()
	a.renderer.finish()
}
