package models

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// OpenRedis connects and pings. Callers fall back to another cache on error.
func OpenRedis(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	var opt *redis.Options
	if o.URL != "" {
		parsedOpt, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url")
		}
		opt = parsedOpt
	} else {
		opt = &redis.Options{
			Addr:     o.Addr,
			Password: o.Password,
			DB:       o.DB,
		}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}

	return client, nil
}
