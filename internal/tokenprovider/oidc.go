// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package tokenprovider

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// oidcTokenProvider runs the client credentials flow with the token endpoint and
// scopes discovered from the issuer's well-known document.
type oidcTokenProvider struct {
	issuerURL    string
	clientID     string
	clientSecret string
	scopes       []string
}

// NewOIDCTokenProvider creates a TokenProvider that discovers the token endpoint
// from issuerURL before exchanging the client credentials.
func NewOIDCTokenProvider(issuerURL, clientID, clientSecret string, scopes []string) TokenProvider {
	return &oidcTokenProvider{
		issuerURL:    issuerURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scopes:       scopes,
	}
}

// GetToken implements TokenProvider.GetToken method to discover the issuer
// metadata and fetch a token through the client credentials flow.
func (p *oidcTokenProvider) GetToken(ctx context.Context) (TokenExpiry, error) {
	config, supportedScopes, err := discoverProviderConfig(ctx, p.issuerURL)
	if err != nil {
		return TokenExpiry{}, fmt.Errorf("failed to get OIDC config: %w", err)
	}

	// Request every supported scope that was not already asked for.
	scopes := p.scopes
	requested := make(map[string]bool, len(scopes))
	for _, scope := range scopes {
		requested[scope] = true
	}
	for _, scope := range supportedScopes {
		if !requested[scope] {
			scopes = append(scopes, scope)
		}
	}

	return NewClientCredentialsTokenProvider(config.TokenURL, p.clientID, p.clientSecret, scopes).GetToken(ctx)
}

// discoverProviderConfig fetches and validates the OIDC metadata for the given issuer URL.
func discoverProviderConfig(ctx context.Context, issuerURL string) (*oidc.ProviderConfig, []string, error) {
	// Check context before proceeding in case context is cancelled because of timeout.
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("context error before discovery: %w", err)
	}

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create go-oidc provider %q: %w", issuerURL, err)
	}

	var config oidc.ProviderConfig
	if err = provider.Claims(&config); err != nil {
		return nil, nil, fmt.Errorf("failed to decode provider config claims %q: %w", issuerURL, err)
	}

	var claims struct {
		SupportedScopes []string `json:"scopes_supported"`
	}
	if err = provider.Claims(&claims); err != nil {
		return nil, nil, fmt.Errorf("failed to decode provider scope supported claims: %w", err)
	}

	if config.IssuerURL == "" {
		return nil, nil, fmt.Errorf("issuer is required in OIDC provider config")
	}
	if config.TokenURL == "" {
		return nil, nil, fmt.Errorf("token_endpoint is required in OIDC provider config")
	}

	return &config, claims.SupportedScopes, nil
}
