// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package tokenprovider

import (
	"context"
	"net/http"
	"net/url"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// azureManagedIdentityTokenProvider obtains Entra ID access tokens without a client
// secret, from whatever identity the environment provides.
type azureManagedIdentityTokenProvider struct {
	credential  azcore.TokenCredential
	tokenOption policy.TokenRequestOptions
}

// NewAzureManagedIdentityTokenProvider creates a TokenProvider from the ambient Azure
// identity. The credential is chosen in order:
//   - AKS Workload Identity when AZURE_FEDERATED_TOKEN_FILE and AZURE_TENANT_ID are set.
//   - User-assigned managed identity when clientID is given.
//   - DefaultAzureCredential otherwise, which also covers system-assigned managed
//     identity, environment variables, and Azure CLI credentials for development.
func NewAzureManagedIdentityTokenProvider(_ context.Context, clientID string, tokenOption policy.TokenRequestOptions) (TokenProvider, error) {
	clientOptions := azureClientOptions()

	var credential azcore.TokenCredential
	var err error

	federatedTokenFile := os.Getenv("AZURE_FEDERATED_TOKEN_FILE")
	tenantID := os.Getenv("AZURE_TENANT_ID")

	switch {
	case federatedTokenFile != "" && tenantID != "":
		if clientID == "" {
			clientID = os.Getenv("AZURE_CLIENT_ID")
		}
		opts := &azidentity.WorkloadIdentityCredentialOptions{
			ClientID:      clientID,
			TenantID:      tenantID,
			TokenFilePath: federatedTokenFile,
		}
		if clientOptions != nil {
			opts.ClientOptions = *clientOptions
		}
		credential, err = azidentity.NewWorkloadIdentityCredential(opts)
	case clientID != "":
		opts := &azidentity.ManagedIdentityCredentialOptions{ID: azidentity.ClientID(clientID)}
		if clientOptions != nil {
			opts.ClientOptions = *clientOptions
		}
		credential, err = azidentity.NewManagedIdentityCredential(opts)
	default:
		var opts *azidentity.DefaultAzureCredentialOptions
		if clientOptions != nil {
			opts = &azidentity.DefaultAzureCredentialOptions{ClientOptions: *clientOptions}
		}
		credential, err = azidentity.NewDefaultAzureCredential(opts)
	}
	if err != nil {
		return nil, err
	}

	return &azureManagedIdentityTokenProvider{credential: credential, tokenOption: tokenOption}, nil
}

// GetToken implements TokenProvider.GetToken method to retrieve an Azure access token and its expiration time.
func (a *azureManagedIdentityTokenProvider) GetToken(ctx context.Context) (TokenExpiry, error) {
	azureToken, err := a.credential.GetToken(ctx, a.tokenOption)
	if err != nil {
		return TokenExpiry{}, err
	}
	return TokenExpiry{Token: azureToken.Token, ExpiresAt: azureToken.ExpiresOn}, nil
}

// azureClientOptions returns the client options shared by the Azure credentials,
// routing through the proxy named by FETCH_TOKEN_AZURE_PROXY_URL when set.
func azureClientOptions() *azcore.ClientOptions {
	azureProxyURL := os.Getenv("FETCH_TOKEN_AZURE_PROXY_URL")
	if azureProxyURL == "" {
		return nil
	}
	proxyURL, err := url.Parse(azureProxyURL)
	if err != nil {
		return nil
	}
	return &azcore.ClientOptions{
		Transport: &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)}},
	}
}
