package chain

import (
	"context"
	"sync"

	"github.com/abdul-hamid-achik/hitchain/packages/core/config"
	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
)

//go:generate mockgen -source=transport.go -destination=mock/transport.go -package=mock

// Transport executes a fully built request. *hithttp.Client implements it.
type Transport interface {
	Do(ctx context.Context, req *hithttp.Request) (*hithttp.Response, error)
}

type transportKey struct {
	followRedirects bool
	maxRedirects    int
	validateSSL     bool
	proxy           string
}

var (
	transportsMu sync.Mutex
	transports   = make(map[transportKey]*hithttp.Client)
)

// transportFor returns a shared client for the connection settings in cfg,
// so chains created from the same defaults reuse one connection pool.
// Timeouts and default headers are applied per request.
func transportFor(cfg *config.Config) Transport {
	key := transportKey{
		followRedirects: cfg.GetFollowRedirects(),
		maxRedirects:    cfg.MaxRedirects,
		validateSSL:     cfg.GetValidateSSL(),
		proxy:           cfg.Proxy,
	}

	transportsMu.Lock()
	defer transportsMu.Unlock()

	if client, ok := transports[key]; ok {
		return client
	}

	opts := []hithttp.ClientOption{
		hithttp.WithTimeout(0),
		hithttp.WithFollowRedirects(key.followRedirects),
		hithttp.WithValidateSSL(key.validateSSL),
	}
	if key.maxRedirects > 0 {
		opts = append(opts, hithttp.WithMaxRedirects(key.maxRedirects))
	}
	if key.proxy != "" {
		opts = append(opts, hithttp.WithProxy(key.proxy))
	}

	client := hithttp.NewClient(opts...)
	transports[key] = client
	return client
}

// NewTransport returns the transport New uses for cfg. Wrap it to observe
// requests without changing how they are sent.
func NewTransport(cfg *config.Config) Transport {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return transportFor(cfg)
}
