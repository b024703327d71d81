// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package tokenprovider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// clientCredentialsTokenProvider implements the standard OAuth2 client credentials
// flow against an explicit token endpoint.
type clientCredentialsTokenProvider struct {
	config clientcredentials.Config
}

// NewClientCredentialsTokenProvider creates a TokenProvider that exchanges the
// client id and secret for an access token at tokenURL.
func NewClientCredentialsTokenProvider(tokenURL, clientID, clientSecret string, scopes []string) TokenProvider {
	return &clientCredentialsTokenProvider{
		config: clientcredentials.Config{
			TokenURL:     tokenURL,
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       scopes,
		},
	}
}

// GetToken implements TokenProvider.GetToken method to fetch the oauth2 token
// and normalize its expiration time.
func (p *clientCredentialsTokenProvider) GetToken(ctx context.Context) (TokenExpiry, error) {
	token, err := p.config.Token(ctx)
	if err != nil {
		return TokenExpiry{}, fmt.Errorf("fail to get oauth2 token %w", err)
	}
	// Handle expiration.
	expiresAt := token.Expiry
	if token.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return TokenExpiry{Token: token.AccessToken, ExpiresAt: expiresAt}, nil
}
