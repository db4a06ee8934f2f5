package probe

import "strings"

// ModeKind names a client creation mode.
type ModeKind string

const (
	KindRegistry           ModeKind = "Registry"
	KindConnectionString   ModeKind = "ConnectionString"
	KindDefaultCredentials ModeKind = "DefaultCredentials"
	KindSharedKey          ModeKind = "SharedKey"
	KindSasToken           ModeKind = "SasToken"
	KindUsernamePassword   ModeKind = "UsernamePassword"
	KindClientSecret       ModeKind = "ClientSecret"
	KindAccountKey         ModeKind = "AccountKey"
)

// noMode is what messages show for a nil Mode.
const noMode = "None"

// AllKinds lists every creation mode in declaration order.
var AllKinds = []ModeKind{
	KindRegistry,
	KindConnectionString,
	KindDefaultCredentials,
	KindSharedKey,
	KindSasToken,
	KindUsernamePassword,
	KindClientSecret,
	KindAccountKey,
}

func (k ModeKind) String() string { return string(k) }

// ParseModeKind parses a configured mode name, ignoring case and
// surrounding space. Unknown names yield a *ValidationError.
func ParseModeKind(s string) (ModeKind, error) {
	trimmed := strings.TrimSpace(s)
	for _, k := range AllKinds {
		if strings.EqualFold(trimmed, string(k)) {
			return k, nil
		}
	}
	return "", unsupportedMode(s)
}

// Mode says how an adapter builds its client. It is a closed set: the
// variants below are the only implementations, and they are used as values.
type Mode interface {
	Kind() ModeKind
	isMode()
}

// Registry resolves a client registered in Services instead of building
// one. Key selects a keyed registration; empty means the default one.
type Registry struct {
	Key string
}

// ConnectionString builds the client from a vendor connection string or DSN.
type ConnectionString struct {
	ConnectionString string
}

// DefaultCredentials builds the client from ambient credentials
// (environment, workload identity, anonymous access).
type DefaultCredentials struct {
	ServiceURI string
}

// SharedKey authenticates with an account name and key.
type SharedKey struct {
	ServiceURI  string
	AccountName string
	AccountKey  string
}

// SasToken authenticates with a shared access signature.
type SasToken struct {
	ServiceURI string
	Token      string
}

// UsernamePassword authenticates with a user name and password.
type UsernamePassword struct {
	ServiceURI string
	Username   string
	Password   string
}

// ClientSecret authenticates as an OAuth2 confidential client.
type ClientSecret struct {
	ServiceURI   string
	TenantID     string
	ClientID     string
	ClientSecret string
}

// AccountKey authenticates with a single key or token.
type AccountKey struct {
	ServiceURI string
	AccountKey string
}

func (Registry) Kind() ModeKind           { return KindRegistry }
func (ConnectionString) Kind() ModeKind   { return KindConnectionString }
func (DefaultCredentials) Kind() ModeKind { return KindDefaultCredentials }
func (SharedKey) Kind() ModeKind          { return KindSharedKey }
func (SasToken) Kind() ModeKind           { return KindSasToken }
func (UsernamePassword) Kind() ModeKind   { return KindUsernamePassword }
func (ClientSecret) Kind() ModeKind       { return KindClientSecret }
func (AccountKey) Kind() ModeKind         { return KindAccountKey }

func (Registry) isMode()           {}
func (ConnectionString) isMode()   {}
func (DefaultCredentials) isMode() {}
func (SharedKey) isMode()          {}
func (SasToken) isMode()           {}
func (UsernamePassword) isMode()   {}
func (ClientSecret) isMode()       {}
func (AccountKey) isMode()         {}

// modeName is the name used in messages; it tolerates a nil Mode.
func modeName(m Mode) string {
	if m == nil {
		return noMode
	}
	return string(m.Kind())
}
