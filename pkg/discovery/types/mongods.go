package types

import (
	"context"
	"time"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func init() {
	discovery.RegisterType(MongoDataSource, newMongoDataSourceReference)
}

// MongoDatabase mongo-datasource 类型物化出的服务对象
type MongoDatabase struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// MongoLocation 构造 mongo-datasource 记录的 location
func MongoLocation(uri, database string) map[string]any {
	return map[string]any{
		"uri":      uri,
		"database": database,
	}
}

func newMongoDataSourceReference(d *discovery.Discovery, record *discovery.Record, config discovery.Config) (discovery.Reference, error) {
	uri := locString(record.Location, "uri")
	if uri == "" {
		return nil, missingLocation(MongoDataSource, "uri")
	}
	database := locString(record.Location, "database")
	if database == "" {
		return nil, missingLocation(MongoDataSource, "database")
	}

	build := func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &MongoDatabase{
			Client:   client,
			Database: client.Database(database),
		}, nil
	}
	cleanup := func(service any) {
		if db, ok := service.(*MongoDatabase); ok {
			_ = db.Client.Disconnect(context.Background())
		}
	}
	return discovery.NewBaseReference(d, record, config, build, cleanup), nil
}
