// internal/config/secrets.go
//
// Vault reference resolution.
//
// Context
// -------
// Any merged config value of the form `vault:<mount>/<path>#<key>` is
// replaced in-place with the secret it names, so the typed model only ever
// sees plain strings.  Resolution happens after the env overlay: an
// operator can point a single field at Vault from either YAML or env.
//
// Secrets are cached inside the Vault client for an hour; Reload() within
// that window does not re-read Vault.

package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/najeorg/naje-backend/internal/vault"
)

const vaultPrefix = "vault:"

// resolveVaultRefs walks every merged key and swaps `vault:` references
// for their secret values.  Building the client is deferred until the
// first reference is seen, so setups without Vault never dial it.
func resolveVaultRefs(k *koanf.Koanf) error {
	var cli *vault.Client

	for _, key := range k.Keys() {
		val := k.String(key)
		if !strings.HasPrefix(val, vaultPrefix) {
			continue
		}

		if cli == nil {
			if !vault.Available() {
				return fmt.Errorf("config key %q references Vault but VAULT_ADDR is not set", key)
			}
			var err error
			cli, err = vault.New(context.Background(), zap.S().Infof)
			if err != nil {
				return err
			}
		}

		secretPath, secretKey, err := splitRef(strings.TrimPrefix(val, vaultPrefix))
		if err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}

		resolved, err := cli.GetKV(context.Background(), secretPath, secretKey, time.Hour)
		if err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
		if err := k.Set(key, resolved); err != nil {
			return err
		}
		zap.S().Debugw("config vault reference resolved", "key", key, "secret", secretPath)
	}
	return nil
}

// splitRef parses "<mount>/<path>#<key>".
func splitRef(ref string) (path, key string, err error) {
	i := strings.LastIndexByte(ref, '#')
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("malformed vault reference %q (want mount/path#key)", ref)
	}
	return ref[:i], ref[i+1:], nil
}
