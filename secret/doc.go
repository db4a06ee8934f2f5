// Package secret resolves credential values referenced from health check
// configuration.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider + Registry)
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:env:ORDERS_BLOB_CONNECTION_STRING
//   - Inline use:  AccountKey=secretref:file:orders/account-key
//
// Two providers are built in: "env" reads an environment variable and
// "file" reads a file below a configured directory, trimming the trailing
// newline that secret mounts usually carry.
package secret
