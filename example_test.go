package konfetti_test

import (
	"context"
	"fmt"

	"github.com/samarcan/konfetti"
	"github.com/samarcan/konfetti/resolver"
)

func Example() {
	ctx := context.Background()

	// Highest priority first: an in-memory override map, then the process
	// environment. Real deployments put vault or NATS KV resolvers here.
	overrides := resolver.NewStatic(map[string]string{
		"API_KEY": "s3cr3t",
		"HOSTS":   "db1,db2",
	})

	k, err := konfetti.New(
		konfetti.WithResolvers(overrides, resolver.NewEnv()),
		konfetti.WithVariables(
			konfetti.MustVariable("API_KEY", konfetti.KindString, konfetti.Required()),
			konfetti.MustVariable("HOSTS", konfetti.KindStringSlice),
			konfetti.MustVariable("TIMEOUT", konfetti.KindInt, konfetti.WithDefault(30)),
		),
	)
	if err != nil {
		panic(err)
	}
	defer k.Close()

	if failures := k.Validate(ctx); len(failures) > 0 {
		panic(fmt.Sprintf("configuration invalid: %v", failures))
	}

	apiKey, _ := k.String(ctx, "API_KEY")
	hosts, _ := k.StringSlice(ctx, "HOSTS")
	timeout, _ := k.Int(ctx, "TIMEOUT")

	fmt.Println(apiKey, hosts, timeout)
	// Output: s3cr3t [db1 db2] 30
}
