// Package redis opens the go-redis client shared by the session store, the
// rate limiter and the Redis ledger backend.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	sessions := session.NewRedisStore(client)
//	limits := ratelimit.NewRedisStore(client)
//
// Connect retries until the server answers a ping so the service may start
// before Redis is up. Healthcheck plugs into the readiness endpoint.
package redis
