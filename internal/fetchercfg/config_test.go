// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package fetchercfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Resolve reads so ambient CI credentials cannot
// leak into the assertions.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"FETCH_TOKEN_PROVIDER", "FETCH_TOKEN_BASE_URL", "FETCH_TOKEN_SCOPES",
		"FETCH_TOKEN_TOKEN_URL", "FETCH_TOKEN_CLIENT_ID", "FETCH_TOKEN_CLIENT_SECRET",
		"FETCH_TOKEN_ISSUER_URL", "FETCH_TOKEN_STATIC_TOKEN", "FETCH_TOKEN_TOKEN_FILE",
		"AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolve_NotConfigured(t *testing.T) {
	clearEnv(t)
	_, err := Resolve(Options{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolve_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
provider: azure
baseURL: https://example.openai.azure.com
timeout: 10s
scopes: [https://cognitiveservices.azure.com/.default]
azure:
  tenantID: some-tenant
  clientID: some-client
  clientSecret: some-secret
`)
	cfg, err := Resolve(Options{Path: path})
	require.NoError(t, err)
	require.Equal(t, ProviderAzure, cfg.Provider)
	require.Equal(t, "https://example.openai.azure.com", cfg.BaseURL)
	require.Equal(t, 10*time.Second, cfg.Timeout)
	require.Equal(t, "some-tenant", cfg.Azure.TenantID)
	require.Equal(t, "some-client", cfg.Azure.ClientID)
	require.Equal(t, "some-secret", cfg.Azure.ClientSecret)
}

func TestResolve_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
provider: static
static:
  token: yaml-token
`)
	t.Setenv("FETCH_TOKEN_STATIC_TOKEN", "env-token")
	t.Setenv("FETCH_TOKEN_BASE_URL", "https://env.example.com")

	cfg, err := Resolve(Options{Path: path})
	require.NoError(t, err)
	require.Equal(t, "env-token", cfg.Static.Token)
	require.Equal(t, "https://env.example.com", cfg.BaseURL)
}

func TestResolve_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_TOKEN_PROVIDER", "azure")
	t.Setenv("FETCH_TOKEN_STATIC_TOKEN", "env-token")
	t.Setenv("FETCH_TOKEN_BASE_URL", "https://env.example.com")

	cfg, err := Resolve(Options{
		Provider: ProviderStatic,
		BaseURL:  "https://flag.example.com",
		Timeout:  5 * time.Second,
		Scopes:   []string{"openid"},
	})
	require.NoError(t, err)
	require.Equal(t, ProviderStatic, cfg.Provider)
	require.Equal(t, "https://flag.example.com", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, []string{"openid"}, cfg.Scopes)
}

func TestResolve_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already present, and the
	// blanked variables from clearEnv count as present. Use Unsetenv so the env
	// file is the only source, and restore the blank on cleanup.
	require.NoError(t, os.Unsetenv("FETCH_TOKEN_PROVIDER"))
	require.NoError(t, os.Unsetenv("FETCH_TOKEN_STATIC_TOKEN"))
	t.Cleanup(func() {
		_ = os.Setenv("FETCH_TOKEN_PROVIDER", "")
		_ = os.Setenv("FETCH_TOKEN_STATIC_TOKEN", "")
	})

	envFile := writeFile(t, ".env", "FETCH_TOKEN_PROVIDER=static\nFETCH_TOKEN_STATIC_TOKEN=dotenv-token\n")
	cfg, err := Resolve(Options{EnvFile: envFile})
	require.NoError(t, err)
	require.Equal(t, ProviderStatic, cfg.Provider)
	require.Equal(t, "dotenv-token", cfg.Static.Token)
}

func TestResolve_EnvFileMissing(t *testing.T) {
	clearEnv(t)
	_, err := Resolve(Options{EnvFile: filepath.Join(t.TempDir(), "nope.env")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load env file")
}

func TestResolve_ScopesFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_TOKEN_PROVIDER", "static")
	t.Setenv("FETCH_TOKEN_STATIC_TOKEN", "token")
	t.Setenv("FETCH_TOKEN_SCOPES", "openid, profile ,")

	cfg, err := Resolve(Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"openid", "profile"}, cfg.Scopes)
}

func TestResolve_DefaultTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_TOKEN_PROVIDER", "static")
	t.Setenv("FETCH_TOKEN_STATIC_TOKEN", "token")

	cfg, err := Resolve(Options{})
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestResolve_BadConfigFile(t *testing.T) {
	clearEnv(t)
	t.Run("missing", func(t *testing.T) {
		_, err := Resolve(Options{Path: filepath.Join(t.TempDir(), "nope.yaml")})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read config file")
	})
	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "provider: [")
		_, err := Resolve(Options{Path: path})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		expErr string
	}{
		{name: "azure missing tenant", cfg: Config{Provider: ProviderAzure}, expErr: "requires a tenant id"},
		{
			name:   "azure missing client id",
			cfg:    Config{Provider: ProviderAzure, Azure: AzureConfig{TenantID: "t"}},
			expErr: "requires a client id",
		},
		{
			name:   "azure missing client secret",
			cfg:    Config{Provider: ProviderAzure, Azure: AzureConfig{TenantID: "t", ClientID: "c"}},
			expErr: "requires a client secret",
		},
		{name: "managed identity needs nothing", cfg: Config{Provider: ProviderAzureManagedIdentity}},
		{name: "client-credentials missing token url", cfg: Config{Provider: ProviderClientCredentials}, expErr: "requires a token URL"},
		{name: "oidc missing issuer", cfg: Config{Provider: ProviderOIDC}, expErr: "requires an issuer URL"},
		{name: "static missing token", cfg: Config{Provider: ProviderStatic}, expErr: "requires a token"},
		{name: "unknown", cfg: Config{Provider: "vault"}, expErr: `unknown token provider "vault"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.expErr)
		})
	}
}

func TestScopesOrDefault(t *testing.T) {
	cfg := Config{}
	require.Equal(t, []string{"https://cognitiveservices.azure.com/.default"}, cfg.ScopesOrDefault())
	cfg.Scopes = []string{"custom/.default"}
	require.Equal(t, []string{"custom/.default"}, cfg.ScopesOrDefault())
}
