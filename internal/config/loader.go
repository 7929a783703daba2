// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

 1. Optional `.env` — `<root>/conf/.env`.
 2. `conf/global.yaml`.
 3. Environment variables prefixed `NAJE_`, where `__` maps to “.”
    (e.g., `NAJE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, `vault:` references are resolved, the tree is unmarshalled
into strongly-typed structs, validated, enriched with the runtime root
path, and cached in an `atomic.Pointer` for lock-free reads.  `Reload()`
simply calls `Load()` again and swaps the pointer.  The pointer swap is
also the process-wide “configuration has been validated” guard; callers
read `Get()` instead of re-checking individual environment variables.

Instrumentation
---------------
  - DEBUG spans — root discovery, YAML read, env overlay.
  - ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  - WARN  span  — recommended-but-missing settings (mail, admin auth).
  - INFO  span  — final “config loaded” with key highlights.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves NAJE_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("NAJE_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves Vault references,
// validates, and caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: NAJE_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("NAJE_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "NAJE_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveVaultRefs(k); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)
	cfg.Paths.Root = root

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	if missing := cfg.MissingRecommended(); len(missing) > 0 {
		zap.S().Warnw("config incomplete, some features disabled",
			"missing", strings.Join(missing, ", "))
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"timezone", cfg.App.Timezone,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// applyDefaults fills values the YAML may omit.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Europe/Berlin"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 8 * time.Hour
	}
	if c.Mail.Endpoint == "" {
		c.Mail.Endpoint = "https://api.sendgrid.com/v3/mail/send"
	}
	if c.Mail.FromName == "" {
		c.Mail.FromName = "Naje e.V."
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
