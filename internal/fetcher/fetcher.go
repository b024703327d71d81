// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package fetcher runs a single token fetch and owns the output contract: exactly
// one JSON object on stdout per invocation, exit code 0 on success and 1 on any
// failure. Everything else goes to the logger.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aoai-labs/fetch-token/internal/fetchercfg"
	"github.com/aoai-labs/fetch-token/internal/tokenprovider"
)

// notConfiguredMessage is emitted when no provider is named by any configuration
// source.
const notConfiguredMessage = "fetch-token needs to be configured with your Azure OpenAI OAuth credentials (see --help)"

// Result is the success document the calling client parses.
type Result struct {
	AccessToken string `json:"access_token"`
	// BaseURL optionally tells the calling client which endpoint to use.
	BaseURL string `json:"baseURL,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Run resolves the configuration, fetches one token, and writes the resulting
// JSON document to stdout. The returned value is the process exit code.
func Run(ctx context.Context, opts fetchercfg.Options, stdout io.Writer, logger *slog.Logger) int {
	cfg, err := fetchercfg.Resolve(opts)
	if err != nil {
		if errors.Is(err, fetchercfg.ErrNotConfigured) {
			return fail(stdout, logger, notConfiguredMessage)
		}
		return fail(stdout, logger, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	provider, err := tokenprovider.New(ctx, cfg)
	if err != nil {
		return fail(stdout, logger, fmt.Sprintf("failed to initialize %s token provider: %v", cfg.Provider, err))
	}

	start := time.Now()
	token, err := provider.GetToken(ctx)
	if err != nil {
		return fail(stdout, logger, fmt.Sprintf("failed to fetch token: %v", err))
	}
	if token.Token == "" {
		return fail(stdout, logger, fmt.Sprintf("%s token provider returned an empty access token", cfg.Provider))
	}
	logger.Debug("fetched token", "provider", cfg.Provider, "expires_at", token.ExpiresAt, "elapsed", time.Since(start))

	return emit(stdout, logger, Result{AccessToken: token.Token, BaseURL: cfg.BaseURL})
}

// emit writes the success document. A marshal failure degrades to the error
// shape so the caller never sees a partial success object.
func emit(stdout io.Writer, logger *slog.Logger, result Result) int {
	data, err := json.Marshal(result)
	if err != nil {
		return fail(stdout, logger, fmt.Sprintf("failed to encode result: %v", err))
	}
	_, _ = stdout.Write(append(data, '\n'))
	return 0
}

func fail(stdout io.Writer, logger *slog.Logger, msg string) int {
	logger.Error("token fetch failed", "error", msg)
	data, err := json.Marshal(errorBody{Error: msg})
	if err != nil {
		// Marshalling a one-field struct of strings cannot fail; keep the
		// contract anyway.
		data = []byte(`{"error": "token fetch failed"}`)
	}
	_, _ = stdout.Write(append(data, '\n'))
	return 1
}
