package cache_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/healthops/cache"
)

func ExampleClients_GetOrCreate() {
	clients := cache.NewClients()
	defer clients.Close()

	builds := 0
	create := func(ctx context.Context) (any, error) {
		builds++
		return "blob-client", nil
	}

	for i := 0; i < 3; i++ {
		_, _ = clients.GetOrCreate(context.Background(), "orders-blob", create)
	}

	fmt.Println("builds:", builds)
	fmt.Println("cached:", clients.Len())
	// Output:
	// builds: 1
	// cached: 1
}

func ExampleClients_GetOrCreate_failure() {
	clients := cache.NewClients()

	_, err := clients.GetOrCreate(context.Background(), "events-db", func(ctx context.Context) (any, error) {
		return nil, errors.New("unable to open database file")
	})

	fmt.Println("error:", err)
	fmt.Println("cached:", clients.Len())
	// Output:
	// error: unable to open database file
	// cached: 0
}

func ExampleValidateKey() {
	fmt.Println(cache.ValidateKey("orders-blob"))
	fmt.Println(cache.ValidateKey("  "))
	// Output:
	// <nil>
	// cache: key is invalid
}
