package ethprovider

import (
	"context"
	"time"

	"github.com/kaspanet/walletsession/infrastructure/notifications"
	"golang.org/x/exp/slices"
)

const pollTimeout = 10 * time.Second

func (p *Provider) watch() {
	defer p.stopped.Done()

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	spawn("ethprovider.watch-stop", func() {
		select {
		case <-p.stop:
			cancelWatch()
		case <-watchCtx.Done():
		}
	})

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(watchCtx, pollTimeout)
		err := p.poll(ctx, true)
		cancel()
		if err != nil && watchCtx.Err() == nil {
			log.Warnf("Error polling for wallet changes: %s", err)
		}
	}
}

// poll reads the accounts and network and, when notify is set, sends a
// notification for each one that differs from the previous poll.
func (p *Provider) poll(ctx context.Context, notify bool) error {
	accounts, err := p.callAccounts(ctx, "eth_accounts")
	if err != nil {
		return convertRPCError(err)
	}
	networkID, err := p.NetworkID(ctx)
	if err != nil {
		return err
	}

	p.stateLock.Lock()
	accountsChanged := !slices.Equal(accounts, p.lastAccounts)
	networkChanged := networkID != p.lastNetworkID
	p.lastAccounts = accounts
	p.lastNetworkID = networkID
	p.stateLock.Unlock()

	if !notify {
		return nil
	}
	if accountsChanged {
		log.Debugf("Accounts changed to %v", accounts)
		p.notificationManager.SendNotification(notifications.NTAccountsChanged, slices.Clone(accounts))
	}
	if networkChanged {
		log.Debugf("Network changed to %s", networkID)
		p.notificationManager.SendNotification(notifications.NTChainChanged, networkID)
	}
	return nil
}
