package elasticsearch

import (
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// Default connection settings.
const (
	DefaultMaxRetries     = 5
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxIdleConns   = 256
	DefaultKeepAlive      = time.Second
	defaultDialTimeout    = 30 * time.Second
	defaultIdleTimeout    = 90 * time.Second
	maxRetryBackoff       = 5 * time.Second
)

// Config holds connection settings for an Elasticsearch cluster.
// It is immutable once a Connection has been built from it.
type Config struct {
	Addresses []string
	Username  string
	Password  string

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// MaxRetries is the per-request retry budget of the client.
	// Zero disables client retries.
	MaxRetries int

	// RequestTimeout bounds the wait for response headers.
	RequestTimeout time.Duration

	// Compression gzips request bodies.
	Compression bool

	// MaxIdleConns sizes the keep-alive pool.
	MaxIdleConns int

	// KeepAlive is the TCP keep-alive probe interval.
	KeepAlive time.Duration
}

// DefaultConfig returns settings for a local single-node cluster.
func DefaultConfig() Config {
	return Config{
		Addresses:      []string{"http://localhost:9200"},
		MaxRetries:     DefaultMaxRetries,
		RequestTimeout: DefaultRequestTimeout,
		Compression:    true,
		MaxIdleConns:   DefaultMaxIdleConns,
		KeepAlive:      DefaultKeepAlive,
	}
}

// Validate checks addresses and bounds.
func (c Config) Validate() error {
	if len(c.Addresses) == 0 {
		return fmt.Errorf("%w: at least one elasticsearch address is required", domain.ErrInvalidInput)
	}
	for _, addr := range c.Addresses {
		u, err := url.Parse(addr)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: invalid elasticsearch address %q", domain.ErrInvalidInput, addr)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: unsupported scheme %q in %q", domain.ErrInvalidInput, u.Scheme, addr)
		}
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative", domain.ErrInvalidInput)
	}
	if c.Password != "" && c.Username == "" {
		return fmt.Errorf("%w: password set without username", domain.ErrInvalidInput)
	}
	return nil
}
