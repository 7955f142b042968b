package elasticsearch

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	elastic "github.com/elastic/go-elasticsearch/v8"

	"github.com/custodia-labs/versesearch/internal/logger"
)

// Connection is a configured handle to an Elasticsearch cluster.
// It owns the keep-alive pool; Shutdown releases it.
type Connection struct {
	client    *elastic.Client
	transport *http.Transport
	cfg       Config
	closeOnce sync.Once
}

// NewConnection builds a client from cfg. No request is made.
func NewConnection(cfg Config) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultDialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		IdleConnTimeout:       defaultIdleTimeout,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed dev clusters
		},
	}

	client, err := elastic.NewClient(elastic.Config{
		Addresses:           cfg.Addresses,
		Username:            cfg.Username,
		Password:            cfg.Password,
		Transport:           transport,
		MaxRetries:          cfg.MaxRetries,
		DisableRetry:        cfg.MaxRetries == 0,
		RetryBackoff:        retryBackoff,
		CompressRequestBody: cfg.Compression,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	logger.Debug("Elasticsearch client configured for %v (retries=%d, compression=%t)",
		cfg.Addresses, cfg.MaxRetries, cfg.Compression)

	return &Connection{client: client, transport: transport, cfg: cfg}, nil
}

// Client returns the underlying client.
func (c *Connection) Client() *elastic.Client {
	return c.client
}

// Config returns the settings the connection was built from.
func (c *Connection) Config() Config {
	return c.cfg
}

// Shutdown closes idle pooled connections. In-flight requests complete.
// Safe to call more than once.
func (c *Connection) Shutdown() {
	c.closeOnce.Do(func() {
		c.transport.CloseIdleConnections()
		logger.Info("Elasticsearch connection closed")
	})
}

// retryBackoff grows linearly per attempt, capped.
func retryBackoff(attempt int) time.Duration {
	d := time.Duration(attempt) * 100 * time.Millisecond
	if d > maxRetryBackoff {
		return maxRetryBackoff
	}
	return d
}
