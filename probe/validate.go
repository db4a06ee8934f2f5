package probe

import (
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks opts for the check called name against every creation
// mode. It returns nil or a *ValidationError describing the first problem.
// Checks run in a fixed order: name, options, timeout, then the mode's own
// fields.
func Validate(name string, opts *Options) error {
	if err := validateOptions(name, opts, nil); err != nil {
		return err
	}
	return nil
}

// ValidateFor is Validate for an adapter whose client type is C and whose
// factory accepts only the supported modes (all modes when none are
// given). In Registry mode a client of type C must be registered in
// services.
func ValidateFor[C any](name string, opts *Options, services *Services, supported ...ModeKind) error {
	if err := validateOptions(name, opts, supported); err != nil {
		return err
	}
	if reg, ok := opts.Mode.(Registry); ok {
		if _, found := Resolve[C](services, reg.Key); !found {
			return notRegistered[C](name, reg.Key)
		}
	}
	return nil
}

// ValidateParams checks that every required adapter parameter is set.
func ValidateParams(name string, opts *Options, required ...string) error {
	for _, p := range required {
		if blank(opts.Param(p)) {
			return invalid(name, "The parameter `%s` cannot be null or whitespace.", p)
		}
	}
	return nil
}

func validateOptions(name string, opts *Options, supported []ModeKind) *ValidationError {
	if blank(name) {
		return invalid(name, "name cannot be null or whitespace")
	}
	if opts == nil {
		return invalid(name, "option cannot be null")
	}
	if opts.Timeout < 0 && opts.Timeout != InfiniteTimeout {
		return invalid(name, "timeout value must be a positive number in milliseconds or -1 for infinite timeout")
	}
	if opts.Mode == nil || (len(supported) > 0 && !slices.Contains(supported, opts.Mode.Kind())) {
		return invalid(name, "The mode `%s` is not supported.", modeName(opts.Mode))
	}

	v := modeValidator{name: name, mode: opts.Mode.Kind()}
	switch m := opts.Mode.(type) {
	case Registry:
		return nil
	case ConnectionString:
		return v.required("connection string", m.ConnectionString)
	case DefaultCredentials:
		return v.serviceURI(m.ServiceURI)
	case SharedKey:
		return v.first(
			func() *ValidationError { return v.serviceURI(m.ServiceURI) },
			func() *ValidationError { return v.required("account key", m.AccountKey) },
			func() *ValidationError { return v.required("account name", m.AccountName) },
		)
	case SasToken:
		return v.first(
			func() *ValidationError { return v.serviceURI(m.ServiceURI) },
			func() *ValidationError { return v.required("sas token", m.Token) },
		)
	case UsernamePassword:
		return v.first(
			func() *ValidationError { return v.serviceURI(m.ServiceURI) },
			func() *ValidationError { return v.required("username", m.Username) },
			func() *ValidationError { return v.required("password", m.Password) },
		)
	case ClientSecret:
		return v.first(
			func() *ValidationError { return v.serviceURI(m.ServiceURI) },
			func() *ValidationError { return v.required("tenant id", m.TenantID) },
			func() *ValidationError { return v.required("client id", m.ClientID) },
			func() *ValidationError { return v.required("client secret", m.ClientSecret) },
		)
	case AccountKey:
		return v.first(
			func() *ValidationError { return v.serviceURI(m.ServiceURI) },
			func() *ValidationError { return v.required("account key", m.AccountKey) },
		)
	default:
		// Pointer variants and foreign implementations.
		return invalid(name, "The mode `%s` is not supported.", modeName(opts.Mode))
	}
}

type modeValidator struct {
	name string
	mode ModeKind
}

func (v modeValidator) first(checks ...func() *ValidationError) *ValidationError {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v modeValidator) serviceURI(uri string) *ValidationError {
	if blank(uri) {
		return invalid(v.name, "The service url cannot be null when using `%s` mode.", v.mode)
	}
	if !IsAbsoluteURL(uri) {
		return invalid(v.name, "The service url must be an absolute url when using `%s` mode.", v.mode)
	}
	return nil
}

func (v modeValidator) required(field, value string) *ValidationError {
	if blank(value) {
		return invalid(v.name, "The %s cannot be null or whitespace when using `%s` mode.", field, v.mode)
	}
	return nil
}

// IsAbsoluteURL reports whether s is a URL with a scheme.
func IsAbsoluteURL(s string) bool {
	return validate.Var(s, "url") == nil
}

func notRegistered[C any](name, key string) *ValidationError {
	msg := "No service of type `" + reflect.TypeFor[C]().String() + "` registered"
	if key != "" {
		msg += " with key `" + key + "`"
	}
	return &ValidationError{Name: name, Message: msg + "."}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
