package secret

import "errors"

var (
	// ErrInvalidRegistration is returned for a blank provider name or nil factory.
	ErrInvalidRegistration = errors.New("secret: invalid provider registration")

	// ErrProviderExists is returned when a provider name is registered twice.
	ErrProviderExists = errors.New("secret: provider already registered")

	// ErrProviderNotRegistered is returned when a reference names an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrNotFound is returned when a provider has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrEmptyValue is returned in strict mode when a provider resolves to "".
	ErrEmptyValue = errors.New("secret: empty value")

	// ErrMissingEnv is returned when ${VAR} names an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")
)
