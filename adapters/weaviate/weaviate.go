// Package weaviate probes a Weaviate vector database.
package weaviate

import (
	"context"
	"fmt"
	"net/url"

	weaviateclient "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"

	"github.com/jonwraymond/healthops/probe"
)

// Kind is the configuration kind of this adapter.
const Kind = "weaviate"

// Modes lists the creation modes Factory accepts. DefaultCredentials
// connects anonymously; AccountKey carries an API key.
var Modes = []probe.ModeKind{probe.KindRegistry, probe.KindDefaultCredentials, probe.KindAccountKey}

// New creates a check that asks the server whether it is ready.
func New(name string, source probe.OptionsSource, opts ...probe.Option) *probe.Check[*weaviateclient.Client] {
	opts = append([]probe.Option{probe.WithKind(Kind), probe.WithModes(Modes...)}, opts...)
	return probe.New(name, source, Factory, Probe, opts...)
}

// Factory builds a client for the service URI.
func Factory(ctx context.Context, opts *probe.Options) (*weaviateclient.Client, error) {
	var (
		uri  string
		cred auth.Config
	)
	switch m := opts.Mode.(type) {
	case probe.DefaultCredentials:
		uri = m.ServiceURI
	case probe.AccountKey:
		uri = m.ServiceURI
		cred = auth.ApiKey{Value: m.AccountKey}
	default:
		return nil, probe.Unsupported(opts.Mode)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("weaviate: parse service uri: %w", err)
	}

	client, err := weaviateclient.NewClient(weaviateclient.Config{
		Host:       u.Host,
		Scheme:     u.Scheme,
		AuthConfig: cred,
	})
	if err != nil {
		return nil, fmt.Errorf("weaviate: create client: %w", err)
	}
	return client, nil
}

// Probe calls the readiness endpoint. A reachable server that is not ready
// fails.
func Probe(ctx context.Context, client *weaviateclient.Client, opts *probe.Options) (probe.Verdict, error) {
	ready, err := client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return probe.Verdict{}, fmt.Errorf("weaviate: ready: %w", err)
	}
	if !ready {
		return probe.Fail("Server is not ready."), nil
	}
	return probe.Pass(), nil
}
