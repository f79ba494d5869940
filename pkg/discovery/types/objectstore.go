package types

import (
	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func init() {
	discovery.RegisterType(ObjectStore, newObjectStoreReference)
}

// ObjectStoreService object-store 类型物化出的服务对象
type ObjectStoreService struct {
	Client *minio.Client
	Bucket string
}

// ObjectStoreLocation 构造 object-store 记录的 location
func ObjectStoreLocation(endpoint, bucket string, ssl bool) map[string]any {
	return map[string]any{
		"endpoint": endpoint,
		"bucket":   bucket,
		"ssl":      ssl,
	}
}

func newObjectStoreReference(d *discovery.Discovery, record *discovery.Record, config discovery.Config) (discovery.Reference, error) {
	endpoint := locString(record.Location, "endpoint")
	if endpoint == "" {
		return nil, missingLocation(ObjectStore, "endpoint")
	}
	bucket := locString(record.Location, "bucket")
	if bucket == "" {
		return nil, missingLocation(ObjectStore, "bucket")
	}

	build := func() (any, error) {
		client, err := minio.New(endpoint, &minio.Options{
			Creds: credentials.NewStaticV4(
				locString(config, "accessKey"),
				locString(config, "secretKey"),
				"",
			),
			Secure: locBool(record.Location, "ssl"),
		})
		if err != nil {
			return nil, err
		}
		return &ObjectStoreService{
			Client: client,
			Bucket: bucket,
		}, nil
	}
	return discovery.NewBaseReference(d, record, config, build, nil), nil
}
