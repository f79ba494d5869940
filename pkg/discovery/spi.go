package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrRecordNotFound backend 中不存在对应记录
	ErrRecordNotFound = errors.New("record not found")
	// ErrMissingRegistration 记录缺少 registration 标识
	ErrMissingRegistration = errors.New("record has no registration id")
)

// Backend 注册表持久化契约，store/update/remove/list 的原子性由实现保证
type Backend interface {
	Init(ctx context.Context, config Config) error
	Store(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) error
	Remove(ctx context.Context, registration string) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Name() string
}

// Publisher 提供给 importer 的发布句柄（Discovery 自身实现）
type Publisher interface {
	Publish(ctx context.Context, record *Record) (*Record, error)
	Unpublish(ctx context.Context, registration string) error
	Update(ctx context.Context, record *Record) (*Record, error)
}

// Importer 把外部系统的服务记录导入本注册表。
// Start 返回 nil 后才算激活；注册调用不会等待 Start 完成。
type Importer interface {
	Start(ctx context.Context, publisher Publisher, config Config) error
	Stop(ctx context.Context, publisher Publisher) error
}

// Exporter 把本地 publish/update/unpublish 事件推送到外部系统。
// 注册后立即生效，没有 importer 那样的异步激活门槛。
type Exporter interface {
	OnPublish(record *Record)
	OnUpdate(record *Record)
	OnUnpublish(registration string)
	Close() error
}

// BackendFactory backend 构造函数
type BackendFactory func() Backend

// DefaultBackendName 内置内存 backend 的名字
const DefaultBackendName = "memory"

var (
	backendMu    sync.RWMutex
	backends     = make(map[string]BackendFactory)
	backendOrder []string
)

// RegisterBackend 按名字注册 backend 构造函数，通常在实现包的 init 中调用，
// 重复注册同名 backend 会 panic。
func RegisterBackend(name string, factory BackendFactory) {
	backendMu.Lock()
	defer backendMu.Unlock()
	if _, exists := backends[name]; exists {
		panic(fmt.Sprintf("discovery: backend %q registered twice", name))
	}
	backends[name] = factory
	backendOrder = append(backendOrder, name)
}

// newBackend 按名字选择 backend：名字为空时取第一个注册的实现，
// 一个都没有则回退到内置内存实现；未知名字返回错误。
func newBackend(name string) (Backend, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()

	if name == "" {
		if len(backendOrder) == 0 {
			return newDefaultBackend(), nil
		}
		return backends[backendOrder[0]](), nil
	}
	if name == DefaultBackendName {
		return newDefaultBackend(), nil
	}
	if factory, ok := backends[name]; ok {
		return factory(), nil
	}
	return nil, fmt.Errorf("discovery: cannot find backend implementation with name %q", name)
}

// DecodeConfig 将自由格式配置解码到带 json tag 的类型化结构体，
// backend / bridge 的 Init 和 Start 用它解析各自的配置段。
func DecodeConfig[T any](config Config) (*T, error) {
	out := new(T)
	if config == nil {
		return out, nil
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
