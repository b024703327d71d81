// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/aoai-labs/fetch-token/internal/version"
)

type (
	cmd struct {
		Version struct{} `cmd:"" help:"Show version."`
		Fetch   cmdFetch `cmd:"" default:"withargs" help:"Fetch a bearer token for an Azure OpenAI-compatible endpoint and print the JSON document to stdout."`
	}
	cmdFetch struct {
		Config   string        `help:"Path to a YAML configuration file." type:"path"`
		EnvFile  string        `help:"Path to a dotenv file loaded before the environment is read." type:"path"`
		Provider string        `help:"Token provider to use: azure, azure-managed-identity, client-credentials, oidc, or static."`
		BaseURL  string        `name:"base-url" help:"Endpoint override emitted alongside the token."`
		Scopes   []string      `name:"scope" help:"OAuth scope to request. Repeatable."`
		Timeout  time.Duration `help:"Deadline for the whole fetch. Defaults to 30s."`
		Debug    bool          `help:"Enable debug logging on stderr."`
	}
)

type fetchFn func(ctx context.Context, c cmdFetch, stdout, stderr io.Writer) int

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr, os.Args[1:], fetch))
}

func doMain(stdout, stderr io.Writer, args []string, ff fetchFn) int {
	var c cmd
	parser, err := kong.New(&c,
		kong.Name("fetch-token"),
		kong.Description("Token fetcher for Azure OpenAI-compatible clients"),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		log.Fatalf("Error creating parser: %v", err)
	}
	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)
	switch ctx.Command() {
	case "version":
		_, _ = stdout.Write([]byte(fmt.Sprintf("fetch-token: %s\n", version.Version)))
		return 0
	case "fetch":
		return ff(context.Background(), c.Fetch, stdout, stderr)
	default:
		panic("unreachable")
	}
}
