package types

import (
	"github.com/code-sigs/go-disco/pkg/discovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func init() {
	discovery.RegisterType(GRPCEndpoint, newGRPCEndpointReference)
}

// GRPCLocation 构造 grpc-endpoint 记录的 location
func GRPCLocation(endpoint string) map[string]any {
	return map[string]any{
		"endpoint": endpoint,
	}
}

func newGRPCEndpointReference(d *discovery.Discovery, record *discovery.Record, config discovery.Config) (discovery.Reference, error) {
	endpoint := locString(record.Location, "endpoint")
	if endpoint == "" {
		return nil, missingLocation(GRPCEndpoint, "endpoint")
	}

	build := func() (any, error) {
		return grpc.NewClient(
			endpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()), // 注意：生产环境中请使用安全连接
			grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(1024*1024*100)), // 设置最大发送消息大小为 100MB
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(1024*1024*100)), // 设置最大接收消息大小为 100MB
			grpc.WithDefaultServiceConfig(`{"loadBalancingPolicy":"round_robin"}`),
		)
	}
	cleanup := func(service any) {
		if conn, ok := service.(*grpc.ClientConn); ok {
			_ = conn.Close()
		}
	}
	return discovery.NewBaseReference(d, record, config, build, cleanup), nil
}
