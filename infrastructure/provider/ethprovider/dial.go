package ethprovider

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/btcsuite/go-socks/socks"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Config describes how to reach the wallet's JSON-RPC endpoint.
type Config struct {
	// RPCServer is the endpoint URL, http(s):// or ws(s)://.
	RPCServer string

	// Proxy is an optional SOCKS5 proxy address (host:port) used for
	// HTTP endpoints.
	Proxy     string
	ProxyUser string
	ProxyPass string

	// PollInterval is how often the watcher checks for account and
	// network changes.
	PollInterval time.Duration
}

// Dial connects to the endpoint described by cfg and returns a stopped
// Provider. Call Start to begin emitting change events.
func Dial(ctx context.Context, cfg *Config) (*Provider, error) {
	endpoint, err := url.Parse(cfg.RPCServer)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid RPC server %s", cfg.RPCServer)
	}

	var options []rpc.ClientOption
	if cfg.Proxy != "" {
		if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
			return nil, errors.Errorf("a proxy can only be used with http(s) endpoints, got %s", endpoint.Scheme)
		}
		options = append(options, rpc.WithHTTPClient(newProxiedHTTPClient(cfg)))
		log.Infof("Connecting to %s through proxy %s", cfg.RPCServer, cfg.Proxy)
	} else {
		log.Infof("Connecting to %s", cfg.RPCServer)
	}

	rpcClient, err := rpc.DialOptions(ctx, cfg.RPCServer, options...)
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to %s", cfg.RPCServer)
	}
	return New(rpcClient, cfg.PollInterval), nil
}

func newProxiedHTTPClient(cfg *Config) *http.Client {
	proxy := &socks.Proxy{
		Addr:     cfg.Proxy,
		Username: cfg.ProxyUser,
		Password: cfg.ProxyPass,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, network, address string) (net.Conn, error) {
				return proxy.Dial(network, address)
			},
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
