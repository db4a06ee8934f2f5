package secret

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as an environment variable name.
type EnvProvider struct {
	// Prefix is prepended to every reference, e.g. "HEALTHOPS_".
	Prefix string
}

// NewEnvProvider creates an EnvProvider with the given variable prefix.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

func (p *EnvProvider) Name() string { return "env" }

// Resolve returns the variable's value, or ErrNotFound when it is unset.
func (p *EnvProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := p.Prefix + ref
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, key)
	}
	return v, nil
}

func (p *EnvProvider) Close() error { return nil }

// FileProvider resolves a reference as a path relative to Dir.
// Values are trimmed of surrounding whitespace.
type FileProvider struct {
	Dir string
}

// NewFileProvider creates a FileProvider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

func (p *FileProvider) Name() string { return "file" }

// Resolve reads the referenced file. References may not escape Dir.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !filepath.IsLocal(ref) {
		return "", fmt.Errorf("%w: file %q is outside the secrets directory", ErrNotFound, ref)
	}

	data, err := os.ReadFile(filepath.Join(p.Dir, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: file %s", ErrNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", ref, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (p *FileProvider) Close() error { return nil }

type envConfig struct {
	Prefix string `mapstructure:"prefix"`
}

type fileConfig struct {
	Dir string `mapstructure:"dir"`
}

func newEnvProvider(cfg map[string]any) (Provider, error) {
	var c envConfig
	if err := mapstructure.Decode(cfg, &c); err != nil {
		return nil, fmt.Errorf("secret: env provider config: %w", err)
	}
	return NewEnvProvider(c.Prefix), nil
}

func newFileProvider(cfg map[string]any) (Provider, error) {
	var c fileConfig
	if err := mapstructure.Decode(cfg, &c); err != nil {
		return nil, fmt.Errorf("secret: file provider config: %w", err)
	}
	if c.Dir == "" {
		c.Dir = "."
	}
	return NewFileProvider(c.Dir), nil
}

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)
