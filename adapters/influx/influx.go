// Package influx probes an InfluxDB 2.x server.
package influx

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/domain"

	"github.com/jonwraymond/healthops/probe"
)

// Kind is the configuration kind of this adapter.
const Kind = "influx"

// Modes lists the creation modes Factory accepts. AccountKey carries an
// API token.
var Modes = []probe.ModeKind{probe.KindRegistry, probe.KindAccountKey, probe.KindUsernamePassword}

// Client wraps an influxdb2.Client so the client cache can close it.
type Client struct {
	influxdb2.Client
	session bool
}

// Wrap adapts a client the host owns, for Registry mode.
func Wrap(c influxdb2.Client) *Client {
	return &Client{Client: c}
}

// Close signs out of a session created by UsernamePassword mode and
// releases the client.
func (c *Client) Close() error {
	var err error
	if c.session {
		err = c.UsersAPI().SignOut(context.Background())
	}
	c.Client.Close()
	return err
}

// New creates a check that reads the server's health endpoint.
func New(name string, source probe.OptionsSource, opts ...probe.Option) *probe.Check[*Client] {
	opts = append([]probe.Option{probe.WithKind(Kind), probe.WithModes(Modes...)}, opts...)
	return probe.New(name, source, Factory, Probe, opts...)
}

// Factory builds a client. UsernamePassword mode signs in, so bad
// credentials fail construction.
func Factory(ctx context.Context, opts *probe.Options) (*Client, error) {
	switch m := opts.Mode.(type) {
	case probe.AccountKey:
		return Wrap(influxdb2.NewClient(m.ServiceURI, m.AccountKey)), nil

	case probe.UsernamePassword:
		c := influxdb2.NewClient(m.ServiceURI, "")
		if err := c.UsersAPI().SignIn(ctx, m.Username, m.Password); err != nil {
			c.Close()
			return nil, fmt.Errorf("influx: sign in: %w", err)
		}
		return &Client{Client: c, session: true}, nil

	default:
		return nil, probe.Unsupported(opts.Mode)
	}
}

// Probe reads /health. Any status other than pass fails with the server's
// message.
func Probe(ctx context.Context, client *Client, opts *probe.Options) (probe.Verdict, error) {
	h, err := client.Health(ctx)
	if err != nil {
		return probe.Verdict{}, fmt.Errorf("influx: health: %w", err)
	}

	details := map[string]any{"name": h.Name}
	if h.Version != nil {
		details["version"] = *h.Version
	}

	if h.Status != domain.HealthCheckStatusPass {
		msg := fmt.Sprintf("Status `%s`.", h.Status)
		if h.Message != nil && *h.Message != "" {
			msg = *h.Message
		}
		return probe.Fail(msg).WithDetails(details), nil
	}
	return probe.Pass().WithDetails(details), nil
}
