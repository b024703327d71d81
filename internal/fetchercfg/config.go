// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package fetchercfg resolves the fetch-token configuration from, in increasing
// precedence, a YAML file, the process environment, and command line flags.
package fetchercfg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in the `provider` field and FETCH_TOKEN_PROVIDER.
const (
	ProviderAzure                = "azure"
	ProviderAzureManagedIdentity = "azure-managed-identity"
	ProviderClientCredentials    = "client-credentials"
	ProviderOIDC                 = "oidc"
	ProviderStatic               = "static"
)

// defaultAzureScope is the resource scope for Azure OpenAI, see
// https://learn.microsoft.com/en-us/azure/ai-services/openai/how-to/managed-identity.
const defaultAzureScope = "https://cognitiveservices.azure.com/.default"

// DefaultTimeout bounds the whole fetch when neither the config file nor the
// --timeout flag sets one.
const DefaultTimeout = 30 * time.Second

// ErrNotConfigured is returned by Resolve when no token provider is named by any
// configuration source. Callers translate it into the error document on stdout.
var ErrNotConfigured = errors.New("no token provider configured")

// Config is the fully resolved fetch-token configuration.
type Config struct {
	// Provider selects the credential flow, one of the Provider* constants.
	Provider string `yaml:"provider"`
	// BaseURL, when set, is emitted alongside the token so the calling client can
	// override its endpoint. It is passed through verbatim, never validated.
	BaseURL string `yaml:"baseURL"`
	// Timeout bounds the whole fetch including discovery round trips.
	Timeout time.Duration `yaml:"timeout"`
	// Scopes are the OAuth scopes to request. Azure providers default to the
	// cognitive services scope when empty.
	Scopes []string `yaml:"scopes"`

	Azure                AzureConfig                `yaml:"azure"`
	AzureManagedIdentity AzureManagedIdentityConfig `yaml:"azureManagedIdentity"`
	ClientCredentials    ClientCredentialsConfig    `yaml:"clientCredentials"`
	OIDC                 OIDCConfig                 `yaml:"oidc"`
	Static               StaticConfig               `yaml:"static"`
}

// AzureConfig configures the client secret flow against Microsoft Entra ID.
type AzureConfig struct {
	TenantID     string `yaml:"tenantID"`
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
}

// AzureManagedIdentityConfig configures managed identity and workload identity.
// ClientID is only needed for a user-assigned identity.
type AzureManagedIdentityConfig struct {
	ClientID string `yaml:"clientID"`
}

// ClientCredentialsConfig configures the plain OAuth2 client credentials flow
// against an explicit token endpoint.
type ClientCredentialsConfig struct {
	TokenURL     string `yaml:"tokenURL"`
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
}

// OIDCConfig configures the client credentials flow with the token endpoint
// discovered from the issuer's well-known document.
type OIDCConfig struct {
	IssuerURL    string `yaml:"issuerURL"`
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
}

// StaticConfig configures the pass-through provider for tokens staged out of
// band, either as a literal value or a file. A JSON file is expected to carry
// the token under the `access_token` key; any other file is used verbatim.
type StaticConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"tokenFile"`
}

// Options carries the command line inputs into Resolve. Zero values mean
// "not given on the command line".
type Options struct {
	// Path to a YAML config file.
	Path string
	// EnvFile is a dotenv file loaded into the process environment before the
	// environment overlay runs.
	EnvFile string
	// Provider, BaseURL, Timeout and Scopes override every other source.
	Provider string
	BaseURL  string
	Timeout  time.Duration
	Scopes   []string
}

// Resolve builds the effective Config from opts: dotenv file first, then the
// YAML file, then the environment, then the flag overrides, then validation.
func Resolve(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	cfg := &Config{}
	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.Path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", opts.Path, err)
		}
	}

	cfg.applyEnv()

	if opts.Provider != "" {
		cfg.Provider = opts.Provider
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout != 0 {
		cfg.Timeout = opts.Timeout
	}
	if len(opts.Scopes) > 0 {
		cfg.Scopes = opts.Scopes
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays FETCH_TOKEN_* variables plus the AZURE_* family that the
// Azure SDK itself honors. Empty variables are treated as unset.
func (c *Config) applyEnv() {
	setIfEnv(&c.Provider, "FETCH_TOKEN_PROVIDER")
	setIfEnv(&c.BaseURL, "FETCH_TOKEN_BASE_URL")
	if v := os.Getenv("FETCH_TOKEN_SCOPES"); v != "" {
		c.Scopes = splitScopes(v)
	}

	setIfEnv(&c.Azure.TenantID, "AZURE_TENANT_ID")
	setIfEnv(&c.Azure.ClientID, "AZURE_CLIENT_ID")
	setIfEnv(&c.Azure.ClientSecret, "AZURE_CLIENT_SECRET")
	setIfEnv(&c.AzureManagedIdentity.ClientID, "AZURE_CLIENT_ID")

	setIfEnv(&c.ClientCredentials.TokenURL, "FETCH_TOKEN_TOKEN_URL")
	setIfEnv(&c.ClientCredentials.ClientID, "FETCH_TOKEN_CLIENT_ID")
	setIfEnv(&c.ClientCredentials.ClientSecret, "FETCH_TOKEN_CLIENT_SECRET")

	setIfEnv(&c.OIDC.IssuerURL, "FETCH_TOKEN_ISSUER_URL")
	setIfEnv(&c.OIDC.ClientID, "FETCH_TOKEN_CLIENT_ID")
	setIfEnv(&c.OIDC.ClientSecret, "FETCH_TOKEN_CLIENT_SECRET")

	setIfEnv(&c.Static.Token, "FETCH_TOKEN_STATIC_TOKEN")
	setIfEnv(&c.Static.TokenFile, "FETCH_TOKEN_TOKEN_FILE")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitScopes(v string) []string {
	var scopes []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// Validate checks that the selected provider has every field its flow needs.
// Error messages name the config field and the environment variable that can
// supply it.
func (c *Config) Validate() error {
	switch c.Provider {
	case "":
		return ErrNotConfigured
	case ProviderAzure:
		switch {
		case c.Azure.TenantID == "":
			return errors.New("azure provider requires a tenant id (azure.tenantID or AZURE_TENANT_ID)")
		case c.Azure.ClientID == "":
			return errors.New("azure provider requires a client id (azure.clientID or AZURE_CLIENT_ID)")
		case c.Azure.ClientSecret == "":
			return errors.New("azure provider requires a client secret (azure.clientSecret or AZURE_CLIENT_SECRET)")
		}
	case ProviderAzureManagedIdentity:
		// Everything is optional: the credential chain falls back to the
		// ambient identity when no client id is given.
	case ProviderClientCredentials:
		switch {
		case c.ClientCredentials.TokenURL == "":
			return errors.New("client-credentials provider requires a token URL (clientCredentials.tokenURL or FETCH_TOKEN_TOKEN_URL)")
		case c.ClientCredentials.ClientID == "":
			return errors.New("client-credentials provider requires a client id (clientCredentials.clientID or FETCH_TOKEN_CLIENT_ID)")
		case c.ClientCredentials.ClientSecret == "":
			return errors.New("client-credentials provider requires a client secret (clientCredentials.clientSecret or FETCH_TOKEN_CLIENT_SECRET)")
		}
	case ProviderOIDC:
		switch {
		case c.OIDC.IssuerURL == "":
			return errors.New("oidc provider requires an issuer URL (oidc.issuerURL or FETCH_TOKEN_ISSUER_URL)")
		case c.OIDC.ClientID == "":
			return errors.New("oidc provider requires a client id (oidc.clientID or FETCH_TOKEN_CLIENT_ID)")
		case c.OIDC.ClientSecret == "":
			return errors.New("oidc provider requires a client secret (oidc.clientSecret or FETCH_TOKEN_CLIENT_SECRET)")
		}
	case ProviderStatic:
		if c.Static.Token == "" && c.Static.TokenFile == "" {
			return errors.New("static provider requires a token (static.token, FETCH_TOKEN_STATIC_TOKEN) or a token file (static.tokenFile, FETCH_TOKEN_TOKEN_FILE)")
		}
	default:
		return fmt.Errorf("unknown token provider %q", c.Provider)
	}
	return nil
}

// ScopesOrDefault returns the configured scopes, defaulting to the Azure OpenAI
// resource scope. Only the Azure providers use this; the generic OAuth2 flows
// take the scopes as configured.
func (c *Config) ScopesOrDefault() []string {
	if len(c.Scopes) > 0 {
		return c.Scopes
	}
	return []string{defaultAzureScope}
}
