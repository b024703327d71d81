// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package tokenprovider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// staticTokenProvider hands back a token obtained out of band. Expiry is unknown
// to this provider and left zero.
type staticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a TokenProvider returning the literal token value.
func NewStaticTokenProvider(token string) TokenProvider {
	return &staticTokenProvider{token: token}
}

// GetToken implements TokenProvider.GetToken.
func (s *staticTokenProvider) GetToken(context.Context) (TokenExpiry, error) {
	return TokenExpiry{Token: s.token}, nil
}

// fileTokenProvider reads the token from a file staged by an external process.
type fileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a TokenProvider reading the token from path on every
// call. A JSON object file is expected to carry the token under `access_token`;
// any other content is used whole, with surrounding whitespace trimmed.
func NewFileTokenProvider(path string) TokenProvider {
	return &fileTokenProvider{path: path}
}

// GetToken implements TokenProvider.GetToken.
func (f *fileTokenProvider) GetToken(context.Context) (TokenExpiry, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return TokenExpiry{}, fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(content))
	if gjson.ValidBytes(content) && gjson.ParseBytes(content).IsObject() {
		token = gjson.GetBytes(content, "access_token").String()
		if token == "" {
			return TokenExpiry{}, fmt.Errorf("access_token not found in token file %s", f.path)
		}
	}
	if token == "" {
		return TokenExpiry{}, fmt.Errorf("token file %s is empty", f.path)
	}
	return TokenExpiry{Token: token}, nil
}
