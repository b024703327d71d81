// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aoai-labs/fetch-token/internal/fetcher"
	"github.com/aoai-labs/fetch-token/internal/fetchercfg"
)

// fetch wires the parsed flags into a single fetcher run. stdout carries only
// the JSON document; all logging goes to stderr.
func fetch(ctx context.Context, c cmdFetch, stdout, stderr io.Writer) int {
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("invocation_id", uuid.NewString())

	return fetcher.Run(ctx, fetchercfg.Options{
		Path:     c.Config,
		EnvFile:  c.EnvFile,
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Scopes:   c.Scopes,
		Timeout:  c.Timeout,
	}, stdout, logger)
}
