// internal/vault/vault.go
//
// Vault client wrapper.
//
// Context
// -------
//   - Concurrency-safe wrapper around the HashiCorp Vault Go SDK.
//   - Adds background token renewal, a KV-v2 read helper, and per-key
//     caching so repeated config loads do not hammer the server.
//   - Used by internal/config to resolve `vault:` references (database
//     password, mail API key, JWT secret) before unmarshalling.
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR  – scheme and host of the Vault server.
//   - VAULT_TOKEN – initial token.
//
// A missing VAULT_ADDR is not an error here; config simply refuses
// `vault:` references when no client can be built.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// Client is safe for concurrent use.  Create once at startup.  The zero
// value is invalid; use New.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)

	cacheMu sync.RWMutex
	cache   map[string]cached // "path#key" → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// Available reports whether the environment points at a Vault server.
func Available() bool { return os.Getenv(vault.EnvVaultAddress) != "" }

// New constructs a Vault client and starts a background token-renewal
// loop.  logFn may be nil.
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		logFn: logFn,
		cache: make(map[string]cached),
	}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result
// is cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return sval, nil
}

// splitMount separates "secret/naje/prod" into mount "secret" and relative
// path "naje/prod".  A path without a slash is treated as a bare mount.
func splitMount(p string) (mount, rel string) {
	p = strings.Trim(p, "/")
	if i := strings.IndexByte(p, '/'); i != -1 {
		return p[:i], p[i+1:]
	}
	return p, ""
}

// renewLoop keeps the token alive for long-running processes.  Renewal
// failures are logged and retried; a revoked token surfaces on the next
// GetKV call.
func (c *Client) renewLoop(ctx context.Context) {
	t := time.NewTicker(15 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0); err != nil {
				c.logFn("vault token renewal failed: %v", err)
			}
		}
	}
}
