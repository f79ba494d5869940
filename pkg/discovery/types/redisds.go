package types

import (
	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/redis/go-redis/v9"
)

func init() {
	discovery.RegisterType(RedisDataSource, newRedisDataSourceReference)
}

// RedisLocation 构造 redis-datasource 记录的 location
func RedisLocation(addresses []string, db int) map[string]any {
	return map[string]any{
		"addresses": addresses,
		"db":        db,
	}
}

func newRedisDataSourceReference(d *discovery.Discovery, record *discovery.Record, config discovery.Config) (discovery.Reference, error) {
	addresses := locStrings(record.Location, "addresses")
	if len(addresses) == 0 {
		if addr := locString(record.Location, "address"); addr != "" {
			addresses = []string{addr}
		}
	}
	if len(addresses) == 0 {
		return nil, missingLocation(RedisDataSource, "addresses")
	}

	build := func() (any, error) {
		password := locString(config, "password")
		if len(addresses) > 1 {
			return redis.NewClusterClient(&redis.ClusterOptions{
				Addrs:    addresses,
				Password: password,
			}), nil
		}
		return redis.NewClient(&redis.Options{
			Addr:     addresses[0],
			Password: password,
			DB:       locInt(record.Location, "db"),
		}), nil
	}
	cleanup := func(service any) {
		if client, ok := service.(redis.UniversalClient); ok {
			_ = client.Close()
		}
	}
	return discovery.NewBaseReference(d, record, config, build, cleanup), nil
}
