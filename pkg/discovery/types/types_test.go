package types

import (
	"testing"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/stretchr/testify/assert"
)

func newTestDiscovery(t *testing.T) *discovery.Discovery {
	t.Helper()
	d, err := discovery.New(nil, &discovery.Options{Backend: discovery.DefaultBackendName})
	assert.NoError(t, err)
	return d
}

func TestHTTPEndpointReference(t *testing.T) {
	d := newTestDiscovery(t)

	record := &discovery.Record{
		Name:     "orders",
		Type:     HTTPEndpoint,
		Location: HTTPLocation("localhost", 8080, "/api/", false),
	}
	ref, err := d.GetReference(record, discovery.Config{"timeoutSeconds": 3})
	assert.NoError(t, err)

	service, err := ref.Get()
	assert.NoError(t, err)
	api := service.(*HTTPService)
	assert.Equal(t, "http://localhost:8080/api", api.BaseURL)
	assert.NotNil(t, api.Client)

	// 缓存后返回同一对象
	again, err := ref.Get()
	assert.NoError(t, err)
	assert.Same(t, service, again)

	assert.True(t, d.Release(ref))
	assert.Nil(t, ref.Cached())
}

func TestHTTPEndpointLocationFallback(t *testing.T) {
	d := newTestDiscovery(t)

	// 没有 endpoint 字段时由 host/port/root/ssl 拼出
	record := &discovery.Record{
		Name: "orders",
		Type: HTTPEndpoint,
		Location: map[string]any{
			"host": "svc.internal",
			"port": 8443,
			"root": "/v1",
			"ssl":  true,
		},
	}
	ref, err := d.GetReference(record, nil)
	assert.NoError(t, err)

	service, err := ref.Get()
	assert.NoError(t, err)
	assert.Equal(t, "https://svc.internal:8443/v1", service.(*HTTPService).BaseURL)
}

func TestHTTPEndpointMissingLocation(t *testing.T) {
	d := newTestDiscovery(t)

	_, err := d.GetReference(&discovery.Record{Name: "broken", Type: HTTPEndpoint}, nil)
	assert.Error(t, err)
}

func TestMessageSourceMissingLocation(t *testing.T) {
	d := newTestDiscovery(t)

	_, err := d.GetReference(&discovery.Record{
		Name:     "events",
		Type:     MessageSource,
		Location: map[string]any{"topic": "orders.events"},
	}, nil)
	assert.Error(t, err)
}

func TestLocationHelpers(t *testing.T) {
	loc := map[string]any{
		"s":    "text",
		"list": []any{"a", "b", 3},
		"n":    float64(42),
		"b":    true,
	}
	assert.Equal(t, "text", locString(loc, "s"))
	assert.Equal(t, "", locString(loc, "missing"))
	assert.Equal(t, []string{"a", "b"}, locStrings(loc, "list"))
	assert.Equal(t, []string{"text"}, locStrings(loc, "s"))
	assert.Equal(t, 42, locInt(loc, "n"))
	assert.True(t, locBool(loc, "b"))
	assert.False(t, locBool(loc, "missing"))
}
