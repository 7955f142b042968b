package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// Backend kinds.
const (
	BackendElasticsearch = "elasticsearch"
	BackendEmbedded      = "embedded"
)

// History drivers.
const (
	HistorySQLite = "sqlite"
	HistoryMemory = "memory"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VERSESEARCH_"

// ErrMissingPassword is returned when a username is configured without a password.
var ErrMissingPassword = errors.New("password required")

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML parses a duration scalar.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Config is the complete application configuration.
type Config struct {
	Backend   BackendConfig   `toml:"backend" yaml:"backend"`
	Index     IndexConfig     `toml:"index" yaml:"index"`
	Readiness ReadinessConfig `toml:"readiness" yaml:"readiness"`
	Search    SearchConfig    `toml:"search" yaml:"search"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
	History   HistoryConfig   `toml:"history" yaml:"history"`
}

// BackendConfig selects and configures the search backend.
type BackendConfig struct {
	Kind               string   `toml:"kind" yaml:"kind"`
	Addresses          []string `toml:"addresses" yaml:"addresses"`
	Username           string   `toml:"username" yaml:"username"`
	Password           string   `toml:"password" yaml:"password"`
	InsecureSkipVerify *bool    `toml:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	MaxRetries         *int     `toml:"max_retries" yaml:"max_retries"`
	RequestTimeout     Duration `toml:"request_timeout" yaml:"request_timeout"`
	Compression        *bool    `toml:"compression" yaml:"compression"`
	MaxIdleConns       int      `toml:"max_idle_conns" yaml:"max_idle_conns"`
	KeepAlive          Duration `toml:"keepalive" yaml:"keepalive"`

	// DataDir holds embedded indexes. Empty keeps them in memory.
	DataDir string `toml:"data_dir" yaml:"data_dir"`
}

// IndexConfig names and sizes the verse index.
type IndexConfig struct {
	Name     string `toml:"name" yaml:"name"`
	Shards   int    `toml:"shards" yaml:"shards"`
	Replicas *int   `toml:"replicas" yaml:"replicas"`
}

// ReadinessConfig bounds the backend readiness wait.
type ReadinessConfig struct {
	MaxAttempts   int      `toml:"max_attempts" yaml:"max_attempts"`
	InitialDelay  Duration `toml:"initial_delay" yaml:"initial_delay"`
	MaxDelay      Duration `toml:"max_delay" yaml:"max_delay"`
	Multiplier    float64  `toml:"multiplier" yaml:"multiplier"`
	HealthTimeout Duration `toml:"health_timeout" yaml:"health_timeout"`
}

// SearchConfig tunes relevance and highlighting.
type SearchConfig struct {
	// FuzzyBoosts and PhraseBoosts are keyed by text field name.
	FuzzyBoosts  map[string]float64 `toml:"fuzzy_boosts" yaml:"fuzzy_boosts"`
	PhraseBoosts map[string]float64 `toml:"phrase_boosts" yaml:"phrase_boosts"`
	PreTag       string             `toml:"pre_tag" yaml:"pre_tag"`
	PostTag      string             `toml:"post_tag" yaml:"post_tag"`
	DefaultSize  int                `toml:"default_size" yaml:"default_size"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen         string  `toml:"listen" yaml:"listen"`
	AdminUsername  string  `toml:"admin_username" yaml:"admin_username"`
	AdminPassword  string  `toml:"admin_password" yaml:"admin_password"`
	RateLimit      float64 `toml:"rate_limit" yaml:"rate_limit"`
	Burst          int     `toml:"burst" yaml:"burst"`
	MaxUploadBytes int64   `toml:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// HistoryConfig configures the ingestion audit store.
type HistoryConfig struct {
	Driver  string `toml:"driver" yaml:"driver"`
	DataDir string `toml:"data_dir" yaml:"data_dir"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Kind:               BackendElasticsearch,
			Addresses:          []string{"http://localhost:9200"},
			InsecureSkipVerify: boolPtr(false),
			MaxRetries:         intPtr(5),
			RequestTimeout:     Duration{60 * time.Second},
			Compression:        boolPtr(true),
			MaxIdleConns:       256,
			KeepAlive:          Duration{time.Second},
		},
		Index: IndexConfig{
			Name:     "verses",
			Shards:   1,
			Replicas: intPtr(0),
		},
		Readiness: ReadinessConfig{
			MaxAttempts:   20,
			InitialDelay:  Duration{time.Second},
			MaxDelay:      Duration{10 * time.Second},
			Multiplier:    1.5,
			HealthTimeout: Duration{5 * time.Second},
		},
		Search: SearchConfig{
			FuzzyBoosts: map[string]float64{
				string(domain.FieldArabic):  3,
				string(domain.FieldEnglish): 2,
				string(domain.FieldBangla):  1,
			},
			PhraseBoosts: map[string]float64{
				string(domain.FieldArabic):  6,
				string(domain.FieldEnglish): 4,
				string(domain.FieldBangla):  2,
			},
			PreTag:      "<mark>",
			PostTag:     "</mark>",
			DefaultSize: 10,
		},
		Server: ServerConfig{
			Listen:         ":3000",
			AdminUsername:  "admin",
			RateLimit:      20,
			Burst:          40,
			MaxUploadBytes: 32 << 20,
		},
		History: HistoryConfig{
			Driver: HistorySQLite,
		},
	}
}

// DefaultDir returns ~/.versesearch.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".versesearch"), nil
}

// Load reads the config file at path, merges it onto the defaults and
// applies environment overrides. An empty path uses defaults only.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = mergeConfig(cfg, fileCfg)
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var fileCfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(content, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return Config{}, errors.New("config file must be .toml, .yaml, or .yml")
	}
	return fileCfg, nil
}

//nolint:gocyclo // Flat field-by-field merge.
func mergeConfig(base, override Config) Config {
	b, o := &base.Backend, override.Backend
	if o.Kind != "" {
		b.Kind = o.Kind
	}
	if len(o.Addresses) > 0 {
		b.Addresses = o.Addresses
	}
	if o.Username != "" {
		b.Username = o.Username
	}
	if o.Password != "" {
		b.Password = o.Password
	}
	if o.InsecureSkipVerify != nil {
		b.InsecureSkipVerify = o.InsecureSkipVerify
	}
	if o.MaxRetries != nil {
		b.MaxRetries = o.MaxRetries
	}
	if o.RequestTimeout.Duration != 0 {
		b.RequestTimeout = o.RequestTimeout
	}
	if o.Compression != nil {
		b.Compression = o.Compression
	}
	if o.MaxIdleConns != 0 {
		b.MaxIdleConns = o.MaxIdleConns
	}
	if o.KeepAlive.Duration != 0 {
		b.KeepAlive = o.KeepAlive
	}
	if o.DataDir != "" {
		b.DataDir = o.DataDir
	}

	if override.Index.Name != "" {
		base.Index.Name = override.Index.Name
	}
	if override.Index.Shards != 0 {
		base.Index.Shards = override.Index.Shards
	}
	if override.Index.Replicas != nil {
		base.Index.Replicas = override.Index.Replicas
	}

	r, or := &base.Readiness, override.Readiness
	if or.MaxAttempts != 0 {
		r.MaxAttempts = or.MaxAttempts
	}
	if or.InitialDelay.Duration != 0 {
		r.InitialDelay = or.InitialDelay
	}
	if or.MaxDelay.Duration != 0 {
		r.MaxDelay = or.MaxDelay
	}
	if or.Multiplier != 0 {
		r.Multiplier = or.Multiplier
	}
	if or.HealthTimeout.Duration != 0 {
		r.HealthTimeout = or.HealthTimeout
	}

	s, osch := &base.Search, override.Search
	for k, v := range osch.FuzzyBoosts {
		s.FuzzyBoosts[k] = v
	}
	for k, v := range osch.PhraseBoosts {
		s.PhraseBoosts[k] = v
	}
	if osch.PreTag != "" {
		s.PreTag = osch.PreTag
	}
	if osch.PostTag != "" {
		s.PostTag = osch.PostTag
	}
	if osch.DefaultSize != 0 {
		s.DefaultSize = osch.DefaultSize
	}

	srv, osrv := &base.Server, override.Server
	if osrv.Listen != "" {
		srv.Listen = osrv.Listen
	}
	if osrv.AdminUsername != "" {
		srv.AdminUsername = osrv.AdminUsername
	}
	if osrv.AdminPassword != "" {
		srv.AdminPassword = osrv.AdminPassword
	}
	if osrv.RateLimit != 0 {
		srv.RateLimit = osrv.RateLimit
	}
	if osrv.Burst != 0 {
		srv.Burst = osrv.Burst
	}
	if osrv.MaxUploadBytes != 0 {
		srv.MaxUploadBytes = osrv.MaxUploadBytes
	}

	if override.History.Driver != "" {
		base.History.Driver = override.History.Driver
	}
	if override.History.DataDir != "" {
		base.History.DataDir = override.History.DataDir
	}
	return base
}

// applyEnv overlays VERSESEARCH_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("BACKEND", &cfg.Backend.Kind)
	str("ES_USERNAME", &cfg.Backend.Username)
	str("ES_PASSWORD", &cfg.Backend.Password)
	str("INDEX", &cfg.Index.Name)
	str("LISTEN", &cfg.Server.Listen)
	str("ADMIN_USERNAME", &cfg.Server.AdminUsername)
	str("ADMIN_PASSWORD", &cfg.Server.AdminPassword)
	str("DATA_DIR", &cfg.Backend.DataDir)

	if v, ok := lookup(EnvPrefix + "ES_ADDRESSES"); ok && v != "" {
		var addrs []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		cfg.Backend.Addresses = addrs
	}
	if v, ok := lookup(EnvPrefix + "ES_INSECURE"); ok && v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sES_INSECURE: %w", EnvPrefix, err)
		}
		cfg.Backend.InsecureSkipVerify = &insecure
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	switch c.Backend.Kind {
	case BackendElasticsearch:
		if len(c.Backend.Addresses) == 0 {
			return fmt.Errorf("%w: backend.addresses is required", domain.ErrInvalidInput)
		}
		if c.Backend.Username != "" && c.Backend.Password == "" {
			return fmt.Errorf("backend user %q: %w", c.Backend.Username, ErrMissingPassword)
		}
	case BackendEmbedded:
	default:
		return fmt.Errorf("%w: backend.kind must be %q or %q, got %q",
			domain.ErrInvalidInput, BackendElasticsearch, BackendEmbedded, c.Backend.Kind)
	}

	replicas := 0
	if c.Index.Replicas != nil {
		replicas = *c.Index.Replicas
	}
	if err := domain.VerseSchema(c.Index.Name, c.Index.Shards, replicas).Validate(); err != nil {
		return err
	}

	if c.Readiness.MaxAttempts < 1 {
		return fmt.Errorf("%w: readiness.max_attempts must be at least 1", domain.ErrInvalidInput)
	}
	if c.Readiness.Multiplier < 1 {
		return fmt.Errorf("%w: readiness.multiplier must be at least 1", domain.ErrInvalidInput)
	}
	if c.Readiness.MaxDelay.Duration < c.Readiness.InitialDelay.Duration {
		return fmt.Errorf("%w: readiness.max_delay must not be below initial_delay", domain.ErrInvalidInput)
	}

	for _, boosts := range []map[string]float64{c.Search.FuzzyBoosts, c.Search.PhraseBoosts} {
		for name := range boosts {
			if _, err := domain.ParseTextField(name); err != nil {
				return fmt.Errorf("search boosts: %w", err)
			}
		}
	}

	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("%w: server.rate_limit and server.burst must not be negative", domain.ErrInvalidInput)
	}

	switch c.History.Driver {
	case HistorySQLite, HistoryMemory:
	default:
		return fmt.Errorf("%w: history.driver must be %q or %q", domain.ErrInvalidInput, HistorySQLite, HistoryMemory)
	}
	return nil
}

// ValidateServer additionally requires admin credentials for the HTTP API.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.AdminUsername == "" {
		return fmt.Errorf("%w: server.admin_username is required", domain.ErrInvalidInput)
	}
	if c.Server.AdminPassword == "" {
		return fmt.Errorf("admin user %q: %w", c.Server.AdminUsername, ErrMissingPassword)
	}
	return nil
}

func boolPtr(v bool) *bool {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// Save writes cfg as TOML to path, creating parent directories.
// Secrets are written as given; the file is created with mode 0600.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
