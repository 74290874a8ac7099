// internal/config/model.go
//
// Typed configuration model for Formdesk.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `FORMDESK_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • Durations accept Go syntax ("15s", "30m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	AllowedOrigins  []string      `koanf:"allowed_origins"  validate:"dive,required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"min=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"min=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"min=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

//
// Database section
//

// Database selects the driver and carries the DSN.
//
// For MySQL the DSN may contain one `%s` verb that receives Password, so
// the template can live in YAML while the secret lives in Vault.  SQLite
// DSNs are file paths or `file::memory:?cache=shared`.
type Database struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=mysql sqlite"`
	DSN             string        `koanf:"dsn"               validate:"required"`
	Password        string        `koanf:"password"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"min=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"min=0"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

//
// Auth section
//

// Auth configures bearer-token verification.
type Auth struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=16"`
	Issuer    string        `koanf:"issuer"`
	Leeway    time.Duration `koanf:"leeway"     validate:"min=0"`
}

//
// Forms section
//

// Forms holds authoring limits and the read-through cache tunables.
type Forms struct {
	MaxFields          int           `koanf:"max_fields"           validate:"min=0"`
	HashCost           int           `koanf:"hash_cost"            validate:"omitempty,min=4,max=31"`
	CacheIdleTTL       time.Duration `koanf:"cache_idle_ttl"       validate:"min=0"`
	CacheMaxEntries    int           `koanf:"cache_max_entries"    validate:"min=0"`
	CacheEvictInterval time.Duration `koanf:"cache_evict_interval" validate:"min=0"`
}

//
// Geo / Log sections
//

// Geo points at an optional GeoLite2-City database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

// Log controls the file logger.  Dir is relative to Paths.Root when not
// absolute.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // FORMDESK_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Forms    Forms    `koanf:"forms"`
	Geo      Geo      `koanf:"geo"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills zero values that have a sensible default.
func (c *Config) applyDefaults() {
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Forms.MaxFields == 0 {
		c.Forms.MaxFields = 20
	}
	if c.Forms.CacheIdleTTL == 0 {
		c.Forms.CacheIdleTTL = 30 * time.Minute
	}
	if c.Forms.CacheMaxEntries == 0 {
		c.Forms.CacheMaxEntries = 1000
	}
	if c.Forms.CacheEvictInterval == 0 {
		c.Forms.CacheEvictInterval = 5 * time.Minute
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
}
