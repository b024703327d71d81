// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package tokenprovider implements the credential flows fetch-token uses to obtain
// a bearer token for an Azure OpenAI-compatible endpoint.
package tokenprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/aoai-labs/fetch-token/internal/fetchercfg"
)

// TokenExpiry represents a token and its expiration time.
type TokenExpiry struct {
	Token     string    // The token string.
	ExpiresAt time.Time // The expiration time of the token, zero when the issuer did not report one.
}

// TokenProvider is an interface for retrieving tokens.
type TokenProvider interface {
	// GetToken retrieves a token and its expiration time.
	GetToken(ctx context.Context) (TokenExpiry, error)
}

// New builds the TokenProvider selected by cfg. The config must have passed
// [fetchercfg.Config.Validate] first; New only reports errors from credential
// construction, not missing fields.
func New(ctx context.Context, cfg *fetchercfg.Config) (TokenProvider, error) {
	switch cfg.Provider {
	case fetchercfg.ProviderAzure:
		return NewAzureTokenProvider(cfg.Azure.TenantID, cfg.Azure.ClientID, cfg.Azure.ClientSecret,
			policy.TokenRequestOptions{Scopes: cfg.ScopesOrDefault()})
	case fetchercfg.ProviderAzureManagedIdentity:
		return NewAzureManagedIdentityTokenProvider(ctx, cfg.AzureManagedIdentity.ClientID,
			policy.TokenRequestOptions{Scopes: cfg.ScopesOrDefault()})
	case fetchercfg.ProviderClientCredentials:
		return NewClientCredentialsTokenProvider(cfg.ClientCredentials.TokenURL,
			cfg.ClientCredentials.ClientID, cfg.ClientCredentials.ClientSecret, cfg.Scopes), nil
	case fetchercfg.ProviderOIDC:
		return NewOIDCTokenProvider(cfg.OIDC.IssuerURL, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.Scopes), nil
	case fetchercfg.ProviderStatic:
		if cfg.Static.Token != "" {
			return NewStaticTokenProvider(cfg.Static.Token), nil
		}
		return NewFileTokenProvider(cfg.Static.TokenFile), nil
	default:
		return nil, fmt.Errorf("unknown token provider %q", cfg.Provider)
	}
}

// mockTokenProvider is used for unit tests to allow passing in a token string and expiry.
type mockTokenProvider struct {
	Token     string    // The mock token string.
	ExpiresAt time.Time // The mock expiration time.
	Err       error     // The error to return when GetToken is called.
}

// GetToken implements TokenProvider.GetToken method to get mock access token and err if any.
func (m *mockTokenProvider) GetToken(_ context.Context) (TokenExpiry, error) {
	return TokenExpiry{m.Token, m.ExpiresAt}, m.Err
}

// NewMockTokenProvider creates a new mockTokenProvider with the given token, expiration time, and error.
func NewMockTokenProvider(mockToken string, mockExpireAt time.Time, err error) TokenProvider {
	mockProvider := mockTokenProvider{
		Token:     mockToken,
		ExpiresAt: mockExpireAt,
		Err:       err,
	}
	return &mockProvider
}
