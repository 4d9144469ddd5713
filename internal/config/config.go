// Package config loads archflow settings.
//
// Settings are layered: built-in defaults, then an optional TOML file, then
// ARCHFLOW_* environment variables (including any found in .env). The result
// is validated before use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/matzehuels/archflow/pkg/layout"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARCHFLOW_"

// FileName is the config file looked up in the working directory.
const FileName = "archflow.toml"

// Duration is a time.Duration written as a string ("15s", "2h") in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the complete application configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Store   Store   `toml:"store"`
	Replica Replica `toml:"replica"`
	Cache   Cache   `toml:"cache"`
	Layout  Layout  `toml:"layout"`
	History History `toml:"history"`
	Log     Log     `toml:"log"`
}

type Server struct {
	Addr            string   `toml:"addr" validate:"required,hostname_port"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" validate:"gt=0"`
	SessionTTL      Duration `toml:"session_ttl" validate:"gte=0"`
	// Seed loads the sample workflows into an empty memory store.
	Seed bool `toml:"seed"`
}

type Store struct {
	Backend       string `toml:"backend" validate:"oneof=memory file sqlite postgres mongo"`
	FileDir       string `toml:"file_dir"`
	SQLitePath    string `toml:"sqlite_path" validate:"required_if=Backend sqlite"`
	PostgresURL   string `toml:"postgres_url" validate:"required_if=Backend postgres"`
	MongoURI      string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `toml:"mongo_database"`
}

// Replica configures where the sqlite database file is mirrored.
type Replica struct {
	BadgerPath     string `toml:"badger_path"`
	MinioEndpoint  string `toml:"minio_endpoint"`
	MinioBucket    string `toml:"minio_bucket" validate:"required_with=MinioEndpoint"`
	MinioPrefix    string `toml:"minio_prefix"`
	MinioAccessKey string `toml:"minio_access_key" validate:"required_with=MinioEndpoint"`
	MinioSecretKey string `toml:"minio_secret_key" validate:"required_with=MinioEndpoint"`
}

type Cache struct {
	Backend   string   `toml:"backend" validate:"oneof=none file redis"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr" validate:"required_if=Backend redis"`
	TTL       Duration `toml:"ttl" validate:"gte=0"`
	// Prefix namespaces every key, for deployments sharing one Redis.
	Prefix string `toml:"prefix"`
}

type Layout struct {
	NodeWidth  float64 `toml:"node_width" validate:"gt=0"`
	NodeHeight float64 `toml:"node_height" validate:"gt=0"`
	RankSep    float64 `toml:"rank_sep" validate:"gte=0"`
	NodeSep    float64 `toml:"node_sep" validate:"gte=0"`
	Iterations int     `toml:"iterations" validate:"gte=1,lte=100"`
}

type History struct {
	// Capacity bounds the undo stack; 0 keeps everything.
	Capacity int `toml:"capacity" validate:"gte=0"`
}

type Log struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration: an in-memory store, no cache
// and the editor's layout spacing.
func Default() *Config {
	lo := layout.DefaultOptions()
	return &Config{
		Server: Server{
			Addr:            "localhost:8080",
			ShutdownTimeout: Duration(15 * time.Second),
			SessionTTL:      Duration(2 * time.Hour),
		},
		Store:   Store{Backend: "memory", MongoDatabase: "archflow"},
		Cache:   Cache{Backend: "none", TTL: Duration(24 * time.Hour)},
		Layout:  Layout{NodeWidth: lo.NodeWidth, NodeHeight: lo.NodeHeight, RankSep: lo.RankSep, NodeSep: lo.NodeSep, Iterations: lo.Iterations},
		History: History{Capacity: 0},
		Log:     Log{Level: "info"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads .env files from the working directory, then the config file at
// path, then the environment. An empty path looks for ARCHFLOW_CONFIG,
// ./archflow.toml and the user config file in turn; none of them has to
// exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, ok := lookup(EnvPrefix + "CONFIG"); ok && p != "" {
			path, explicit = p, true
		} else {
			path = findFile(lookup)
		}
	}
	if path != "" {
		err := cfg.decodeFile(path)
		if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile(lookup func(string) (string, bool)) string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	dir, ok := lookup("XDG_CONFIG_HOME")
	if !ok || dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	p := filepath.Join(dir, "archflow", "config.toml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LogLevel returns the configured level for charm log.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// LayoutOptions returns the layout engine options.
func (c *Config) LayoutOptions(logger *log.Logger) layout.Options {
	return layout.Options{
		NodeWidth:  c.Layout.NodeWidth,
		NodeHeight: c.Layout.NodeHeight,
		RankSep:    c.Layout.RankSep,
		NodeSep:    c.Layout.NodeSep,
		Iterations: c.Layout.Iterations,
		Logger:     logger,
	}
}

type binding struct {
	key string
	set func(string) error
}

func str(p *string) func(string) error {
	return func(v string) error { *p = v; return nil }
}

func integer(p *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p = n
		return nil
	}
}

func float(p *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*p = f
		return nil
	}
}

func boolean(p *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*p = b
		return nil
	}
}

func duration(p *Duration) func(string) error {
	return func(v string) error { return p.UnmarshalText([]byte(v)) }
}

func (c *Config) bindings() []binding {
	return []binding{
		{"SERVER_ADDR", str(&c.Server.Addr)},
		{"SERVER_SHUTDOWN_TIMEOUT", duration(&c.Server.ShutdownTimeout)},
		{"SERVER_SESSION_TTL", duration(&c.Server.SessionTTL)},
		{"SERVER_SEED", boolean(&c.Server.Seed)},
		{"STORE_BACKEND", str(&c.Store.Backend)},
		{"STORE_FILE_DIR", str(&c.Store.FileDir)},
		{"STORE_SQLITE_PATH", str(&c.Store.SQLitePath)},
		{"STORE_POSTGRES_URL", str(&c.Store.PostgresURL)},
		{"STORE_MONGO_URI", str(&c.Store.MongoURI)},
		{"STORE_MONGO_DATABASE", str(&c.Store.MongoDatabase)},
		{"REPLICA_BADGER_PATH", str(&c.Replica.BadgerPath)},
		{"REPLICA_MINIO_ENDPOINT", str(&c.Replica.MinioEndpoint)},
		{"REPLICA_MINIO_BUCKET", str(&c.Replica.MinioBucket)},
		{"REPLICA_MINIO_PREFIX", str(&c.Replica.MinioPrefix)},
		{"REPLICA_MINIO_ACCESS_KEY", str(&c.Replica.MinioAccessKey)},
		{"REPLICA_MINIO_SECRET_KEY", str(&c.Replica.MinioSecretKey)},
		{"CACHE_BACKEND", str(&c.Cache.Backend)},
		{"CACHE_DIR", str(&c.Cache.Dir)},
		{"CACHE_REDIS_ADDR", str(&c.Cache.RedisAddr)},
		{"CACHE_TTL", duration(&c.Cache.TTL)},
		{"CACHE_PREFIX", str(&c.Cache.Prefix)},
		{"LAYOUT_NODE_WIDTH", float(&c.Layout.NodeWidth)},
		{"LAYOUT_NODE_HEIGHT", float(&c.Layout.NodeHeight)},
		{"LAYOUT_RANK_SEP", float(&c.Layout.RankSep)},
		{"LAYOUT_NODE_SEP", float(&c.Layout.NodeSep)},
		{"LAYOUT_ITERATIONS", integer(&c.Layout.Iterations)},
		{"HISTORY_CAPACITY", integer(&c.History.Capacity)},
		{"LOG_LEVEL", str(&c.Log.Level)},
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, b := range c.bindings() {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok {
			continue
		}
		if err := b.set(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err)
		}
	}
	return nil
}

// Keys lists the supported environment variables.
func Keys() []string {
	var c Config
	bs := c.bindings()
	keys := make([]string, len(bs))
	for i, b := range bs {
		keys[i] = EnvPrefix + b.key
	}
	return keys
}
