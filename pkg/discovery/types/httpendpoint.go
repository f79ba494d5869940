package types

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/code-sigs/go-disco/pkg/discovery"
)

func init() {
	discovery.RegisterType(HTTPEndpoint, newHTTPEndpointReference)
}

// HTTPService http-endpoint 类型物化出的服务对象
type HTTPService struct {
	Client  *http.Client
	BaseURL string
}

// HTTPLocation 构造 http-endpoint 记录的 location
func HTTPLocation(host string, port int, root string, ssl bool) map[string]any {
	scheme := "http"
	if ssl {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s:%d%s", scheme, host, port, root)
	return map[string]any{
		"endpoint": endpoint,
		"host":     host,
		"port":     port,
		"root":     root,
		"ssl":      ssl,
	}
}

func newHTTPEndpointReference(d *discovery.Discovery, record *discovery.Record, config discovery.Config) (discovery.Reference, error) {
	endpoint := locString(record.Location, "endpoint")
	if endpoint == "" {
		host := locString(record.Location, "host")
		if host == "" {
			return nil, missingLocation(HTTPEndpoint, "endpoint")
		}
		scheme := "http"
		if locBool(record.Location, "ssl") {
			scheme = "https"
		}
		port := locInt(record.Location, "port")
		if port == 0 {
			port = 80
		}
		endpoint = fmt.Sprintf("%s://%s:%d%s", scheme, host, port, locString(record.Location, "root"))
	}

	build := func() (any, error) {
		client := &http.Client{}
		if timeout := locInt(config, "timeoutSeconds"); timeout > 0 {
			client.Timeout = time.Duration(timeout) * time.Second
		}
		return &HTTPService{
			Client:  client,
			BaseURL: strings.TrimRight(endpoint, "/"),
		}, nil
	}
	cleanup := func(service any) {
		if svc, ok := service.(*HTTPService); ok {
			svc.Client.CloseIdleConnections()
		}
	}
	return discovery.NewBaseReference(d, record, config, build, cleanup), nil
}
