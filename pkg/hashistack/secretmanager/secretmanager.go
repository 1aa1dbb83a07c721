package secretmanager

import (
	"fmt"
	"time"

	vault "github.com/hashicorp/vault-client-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the Vault client config.Module overlays credentials from
// (database, redis, PagSeguro token, Pagar.me key).
var Module = fx.Module("secretmanager", fx.Provide(ProvideVault))

// ProvideVault reads VAULT_ADDR, VAULT_TOKEN and the other standard VAULT_*
// variables.
func ProvideVault() (*vault.Client, error) {
	client, err := vault.New(
		vault.WithEnvironment(),
		vault.WithRequestTimeout(10*time.Second),
	)
	if err != nil {
		zap.L().Error("[Vault] failed to build client", zap.Error(err))
		return nil, fmt.Errorf("vault client: %w", err)
	}

	zap.L().Info("[Vault] client ready", zap.String("addr", client.Configuration().Address))
	return client, nil
}
