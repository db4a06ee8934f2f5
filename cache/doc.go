// Package cache keeps the vendor clients that health checks probe.
//
// Clients maps a check name to a constructed client. Building a client is
// usually the expensive part of a check (credential exchange, connection
// pools), so it happens once per name and is shared by every later run:
//
//	clients := cache.NewClients()
//	defer clients.Close()
//
//	c, err := clients.GetOrCreate(ctx, "orders-blob", func(ctx context.Context) (any, error) {
//	    return azblob.NewClientFromConnectionString(conn, nil)
//	})
//
// Concurrent first callers share one construction through singleflight.
// A failed construction is returned to every waiter and retried by the
// next call. Names are validated with ValidateKey.
package cache
