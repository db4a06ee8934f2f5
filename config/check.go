package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/healthops/probe"
	"github.com/jonwraymond/healthops/secret"
)

// CheckConfig is the flat key/value bag configuring one check. Credential
// fields may hold secret references (secretref:<provider>:<ref>) and
// ${ENV} expansions.
type CheckConfig struct {
	Kind string `mapstructure:"kind" validate:"required"`
	Mode string `mapstructure:"mode" validate:"required"`

	// Timeout is in milliseconds; -1 disables it. Unset means 10000.
	Timeout *int `mapstructure:"timeout"`

	// Key selects a keyed registration in Registry mode.
	Key string `mapstructure:"key"`

	ConnectionString string `mapstructure:"connection_string"`
	ServiceURI       string `mapstructure:"service_uri"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	SasToken         string `mapstructure:"sas_token"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	TenantID         string `mapstructure:"tenant_id"`
	ClientID         string `mapstructure:"client_id"`
	ClientSecret     string `mapstructure:"client_secret"`

	// Params collects every other key as an adapter parameter.
	Params map[string]any `mapstructure:",remain"`
}

// TimeoutDuration converts the configured milliseconds.
func (c CheckConfig) TimeoutDuration() time.Duration {
	switch {
	case c.Timeout == nil:
		return probe.DefaultTimeout
	case *c.Timeout == -1:
		return probe.InfiniteTimeout
	default:
		return time.Duration(*c.Timeout) * time.Millisecond
	}
}

// Options resolves secrets and builds the probe options. It does not
// validate required fields; see probe.Validate.
func (c CheckConfig) Options(ctx context.Context, resolver *secret.Resolver) (*probe.Options, error) {
	kind, err := probe.ParseModeKind(c.Mode)
	if err != nil {
		return nil, err
	}

	r := &fieldResolver{ctx: ctx, resolver: resolver}
	var mode probe.Mode
	switch kind {
	case probe.KindRegistry:
		mode = probe.Registry{Key: c.Key}
	case probe.KindConnectionString:
		mode = probe.ConnectionString{ConnectionString: r.value("connection_string", c.ConnectionString)}
	case probe.KindDefaultCredentials:
		mode = probe.DefaultCredentials{ServiceURI: r.value("service_uri", c.ServiceURI)}
	case probe.KindSharedKey:
		mode = probe.SharedKey{
			ServiceURI:  r.value("service_uri", c.ServiceURI),
			AccountName: r.value("account_name", c.AccountName),
			AccountKey:  r.value("account_key", c.AccountKey),
		}
	case probe.KindSasToken:
		mode = probe.SasToken{
			ServiceURI: r.value("service_uri", c.ServiceURI),
			Token:      r.value("sas_token", c.SasToken),
		}
	case probe.KindUsernamePassword:
		mode = probe.UsernamePassword{
			ServiceURI: r.value("service_uri", c.ServiceURI),
			Username:   r.value("username", c.Username),
			Password:   r.value("password", c.Password),
		}
	case probe.KindClientSecret:
		mode = probe.ClientSecret{
			ServiceURI:   r.value("service_uri", c.ServiceURI),
			TenantID:     r.value("tenant_id", c.TenantID),
			ClientID:     r.value("client_id", c.ClientID),
			ClientSecret: r.value("client_secret", c.ClientSecret),
		}
	case probe.KindAccountKey:
		mode = probe.AccountKey{
			ServiceURI: r.value("service_uri", c.ServiceURI),
			AccountKey: r.value("account_key", c.AccountKey),
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	params, err := c.params(ctx, resolver)
	if err != nil {
		return nil, err
	}

	return &probe.Options{
		Mode:    mode,
		Timeout: c.TimeoutDuration(),
		Params:  params,
	}, nil
}

func (c CheckConfig) params(ctx context.Context, resolver *secret.Resolver) (map[string]string, error) {
	raw := make(map[string]string, len(c.Params))
	for k, v := range c.Params {
		switch v.(type) {
		case string, bool, int, int64, uint64, float64:
			raw[k] = fmt.Sprint(v)
		case nil:
			raw[k] = ""
		default:
			return nil, fmt.Errorf("parameter %q must be a scalar, got %T", k, v)
		}
	}
	return resolver.ResolveMap(ctx, raw)
}

// fieldResolver resolves fields until the first error, which it keeps.
type fieldResolver struct {
	ctx      context.Context
	resolver *secret.Resolver
	err      error
}

func (r *fieldResolver) value(field, v string) string {
	if r.err != nil || v == "" {
		return v
	}
	out, err := r.resolver.ResolveValue(r.ctx, v)
	if err != nil {
		r.err = fmt.Errorf("resolve %s: %w", field, err)
		return ""
	}
	return out
}

// Options builds the options of every check. Errors name the check.
func (d *Document) Options(ctx context.Context, resolver *secret.Resolver) (map[string]*probe.Options, error) {
	out := make(map[string]*probe.Options, len(d.Checks))
	for _, name := range d.CheckNames() {
		opts, err := d.Checks[name].Options(ctx, resolver)
		if err != nil {
			return nil, fmt.Errorf("config: check %q: %w", name, err)
		}
		out[name] = opts
	}
	return out, nil
}

// Check returns the configuration of one check.
func (d *Document) Check(name string) (CheckConfig, error) {
	c, ok := d.Checks[name]
	if !ok {
		return CheckConfig{}, fmt.Errorf("%w: %q", ErrUnknownCheck, name)
	}
	return c, nil
}
