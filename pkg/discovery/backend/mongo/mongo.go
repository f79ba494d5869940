// Package mongo 提供基于 MongoDB 的 discovery backend，
// 记录存放在一个 collection 中，_id 为 registration。
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/code-sigs/go-disco/pkg/errs"
	"github.com/code-sigs/go-disco/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const Name = "mongo"

const defaultCollection = "records"

func init() {
	discovery.RegisterBackend(Name, func() discovery.Backend {
		return &Backend{}
	})
}

// Config mongo backend 配置
type Config struct {
	URI            string `mapstructure:"uri" json:"uri"`                       // 支持多节点（如 mongodb://host1,host2/?replicaSet=rs0）
	Database       string `mapstructure:"database" json:"database"`             // 数据库名
	Collection     string `mapstructure:"collection" json:"collection"`         // 集合名，默认 records
	ConnectTimeout int    `mapstructure:"connectTimeout" json:"connectTimeout"` // 连接超时（秒）
}

type recordDoc struct {
	ID     string           `bson:"_id"`
	Record discovery.Record `bson:"record"`
}

type Backend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func (b *Backend) Init(ctx context.Context, config discovery.Config) error {
	cfg, err := discovery.DecodeConfig[Config](config)
	if err != nil {
		return err
	}
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "go-disco"
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultCollection
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10
	}

	timeout := time.Duration(cfg.ConnectTimeout) * time.Second
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout))
	if err != nil {
		return errs.WithCode(errs.Wrap(err, "connect to mongo failed"), errs.ErrorBackendConfig)
	}

	// Ping 主节点确保连接可用
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return errs.WithCode(errs.Wrap(err, "ping mongo failed"), errs.ErrorBackendConfig)
	}

	b.client = client
	b.collection = client.Database(cfg.Database).Collection(cfg.Collection)
	return nil
}

func (b *Backend) Store(ctx context.Context, record *discovery.Record) (*discovery.Record, error) {
	if record.Registration == "" {
		record.Registration = utils.GenerateUUID()
	}
	doc := recordDoc{ID: record.Registration, Record: *record.Copy()}
	if _, err := b.collection.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return record, nil
}

func (b *Backend) Update(ctx context.Context, record *discovery.Record) error {
	if record.Registration == "" {
		return discovery.ErrMissingRegistration
	}
	doc := recordDoc{ID: record.Registration, Record: *record.Copy()}
	result, err := b.collection.ReplaceOne(ctx, bson.M{"_id": record.Registration}, doc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return discovery.ErrRecordNotFound
	}
	return nil
}

func (b *Backend) Remove(ctx context.Context, registration string) (*discovery.Record, error) {
	if registration == "" {
		return nil, discovery.ErrMissingRegistration
	}
	var doc recordDoc
	err := b.collection.FindOneAndDelete(ctx, bson.M{"_id": registration}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, discovery.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc.Record, nil
}

func (b *Backend) List(ctx context.Context) ([]*discovery.Record, error) {
	cursor, err := b.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var docs []recordDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	records := make([]*discovery.Record, 0, len(docs))
	for i := range docs {
		records = append(records, &docs[i].Record)
	}
	return records, nil
}

func (b *Backend) Name() string {
	return Name
}
