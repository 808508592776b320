package client

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/dnscache"
	"github.com/rs/zerolog"
)

// NewTransport returns a tuned *http.Transport with connection pooling and
// optional DNS caching.
func NewTransport(resolver *dnscache.Resolver) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if resolver != nil {
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var d net.Dialer
			return d.DialContext(ctx, network, net.JoinHostPort(ips[0], port))
		}
	}
	return t
}

// ResolverRefresher periodically refreshes cached DNS entries so upstream
// address changes are picked up without a restart.
type ResolverRefresher struct {
	resolver *dnscache.Resolver
	interval time.Duration
	logger   zerolog.Logger
}

// NewResolverRefresher creates a ResolverRefresher.
func NewResolverRefresher(resolver *dnscache.Resolver, interval time.Duration, logger zerolog.Logger) *ResolverRefresher {
	return &ResolverRefresher{resolver: resolver, interval: interval, logger: logger}
}

// Run refreshes the resolver every interval until ctx is cancelled. Entries
// not used since the previous refresh are dropped.
func (r *ResolverRefresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.resolver.Refresh(true)
			r.logger.Debug().Msg("DNS cache refreshed")
		case <-ctx.Done():
			return nil
		}
	}
}
