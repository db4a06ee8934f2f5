// Package config loads the healthops YAML configuration and binds each
// check's options.
//
// A document has four sections:
//
//	observe:            # observe.Config
//	  service_name: healthops
//	  logging: {enabled: true, level: info}
//	server:
//	  addr: ":8080"
//	  timeout_ms: 30000
//	  max_concurrent: 16
//	  rate_limit: {rps: 5, burst: 10}
//	  construct_retry: {max_attempts: 3, initial_delay_ms: 200}
//	  circuit: {max_failures: 5, reset_timeout_ms: 30000}
//	secrets:
//	  file: {dir: /run/secrets}
//	checks:
//	  orders-blob:
//	    kind: azureblob
//	    mode: SharedKey
//	    timeout: 2000
//	    service_uri: https://orders.blob.core.windows.net
//	    account_name: orders
//	    account_key: secretref:file:orders-account-key
//	    container: orders
//
// Each check is a flat bag: kind, mode, timeout, and the credential fields
// of its mode are fixed keys, and any other key becomes an adapter
// parameter. Credential values go through secret.Resolver.
//
// Store is the probe.OptionsSource checks read from; Watcher re-loads the
// file when it changes so the host can Replace the store's content.
package config
