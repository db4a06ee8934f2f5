package secret

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const refPrefix = "secretref:"

// Resolver resolves secret references using registered providers.
//
// Values are first expanded with ExpandEnvStrict. A value that is a single
// reference resolves to the provider's value; references embedded in a
// longer value are substituted in place.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver. In strict mode an empty provider value
// is an error wrapping ErrEmptyValue.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
		strict:    strict,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider.
func (r *Resolver) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	r.providers[provider.Name()] = provider
}

// Providers returns the registered provider names in sorted order.
func (r *Resolver) Providers() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveValue resolves environment variables and secret refs in value.
// A nil Resolver only expands the environment.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if r == nil || !strings.Contains(expanded, refPrefix) {
		return expanded, nil
	}

	if providerName, ref, ok := ParseSecretRef(expanded); ok {
		return r.resolveSingle(ctx, providerName, ref)
	}
	return r.resolveInline(ctx, expanded)
}

// ResolveMap resolves each value in input. Errors name the offending key,
// never the value.
func (r *Resolver) ResolveMap(ctx context.Context, input map[string]string) (map[string]string, error) {
	if input == nil {
		return nil, nil
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// Close closes every provider.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, name := range r.Providers() {
		if err := r.providers[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("secret: close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	if !strings.HasPrefix(value, refPrefix) {
		return "", "", false
	}
	provider, ref, found := strings.Cut(strings.TrimPrefix(value, refPrefix), ":")
	if !found || provider == "" || ref == "" || strings.ContainsAny(value, " \t\n;,") {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) resolveSingle(ctx context.Context, providerName string, ref string) (string, error) {
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotRegistered, providerName)
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("%w: provider %q", ErrEmptyValue, providerName)
	}
	return resolved, nil
}

var inlineSecretRefPattern = regexp.MustCompile(`secretref:([^:\s]+):([^\s;,]+)`)

func (r *Resolver) resolveInline(ctx context.Context, value string) (string, error) {
	matches := inlineSecretRefPattern.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value, nil
	}

	// Replace from the end so earlier indexes stay valid.
	out := value
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		resolved, err := r.resolveSingle(ctx, out[m[2]:m[3]], out[m[4]:m[5]])
		if err != nil {
			return "", err
		}
		out = out[:m[0]] + resolved + out[m[1]:]
	}
	return out, nil
}
