// internal/config/model.go
//
// Typed configuration model for the Naje backend.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   - optional `.env`                        – dotenv values,
//   - `conf/global.yaml`                     – primary static file,
//   - `NAJE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.  Secrets that are merely recommended (mail
// key, admin token) are reported by MissingRecommended instead, because
// the public site must keep serving even when mail is unconfigured.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   - The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// App section
//

// App carries site-wide values that end up in emails and links.  Timezone
// names the location used for the derived subscription date/hour/weekday
// columns and for calendar attachments.
type App struct {
	URL      string `koanf:"url"`
	Timezone string `koanf:"timezone"`
}

//
// Database section
//

// Database holds the MySQL DSN.  The password portion is typically a
// `vault:` reference resolved at load time.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// Auth section
//

// Auth configures the dual admin credential scheme: a signed bearer token
// (JWTSecret, TokenTTL) and an optional pre-shared operator token
// (APIToken).  Either may be empty; an empty scheme is simply not offered.
type Auth struct {
	JWTSecret string        `koanf:"jwt_secret"`
	APIToken  string        `koanf:"api_token"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

//
// Mail section
//

// Mail configures the outbound mail provider.  Endpoint is the JSON API
// base URL; To is the operator inbox that receives contact submissions.
type Mail struct {
	Endpoint string `koanf:"endpoint"`
	APIKey   string `koanf:"api_key"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`
	To       string `koanf:"to"`
}

//
// Cache section
//

// Cache configures the optional remote key/value tier.  Both fields must
// be set (and RemoteURL must be https) for the tier to activate; the
// in-process tier works regardless.
type Cache struct {
	RemoteURL   string `koanf:"remote_url"`
	RemoteToken string `koanf:"remote_token"`
}

//
// Storage section
//

// Storage configures the S3 bucket used for uploaded program images.
// PublicBaseURL is the prefix of the world-readable object URLs; Endpoint
// overrides the AWS endpoint for S3-compatible providers.
type Storage struct {
	Bucket        string `koanf:"bucket"`
	Region        string `koanf:"region"`
	Endpoint      string `koanf:"endpoint"`
	AccessKey     string `koanf:"access_key"`
	SecretKey     string `koanf:"secret_key"`
	PublicBaseURL string `koanf:"public_base_url"`
}

//
// Geo section
//

// Geo points at an optional MaxMind database; when absent, request info
// simply carries no country hint.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers Root (repo root or NAJE_ROOT override) so later code can build
// absolute file paths, e.g. for the log directory and the mail logo.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	App      App      `koanf:"app"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Mail     Mail     `koanf:"mail"`
	Cache    Cache    `koanf:"cache"`
	Storage  Storage  `koanf:"storage"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"`
}

// MissingRecommended lists configuration the service can start without but
// that disables a feature: outbound mail, admin auth, and the app URL used
// in confirmation links.  cmd/bootstrap prints this; Load logs it once.
func (c *Config) MissingRecommended() []string {
	var missing []string
	if c.App.URL == "" {
		missing = append(missing, "app.url")
	}
	if c.Mail.APIKey == "" {
		missing = append(missing, "mail.api_key")
	}
	if c.Mail.From == "" {
		missing = append(missing, "mail.from")
	}
	if c.Mail.To == "" {
		missing = append(missing, "mail.to")
	}
	if c.Auth.JWTSecret == "" && c.Auth.APIToken == "" {
		missing = append(missing, "auth.jwt_secret or auth.api_token")
	}
	return missing
}
