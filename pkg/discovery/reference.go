package discovery

import "sync"

// Reference 消费者解析记录后持有的绑定句柄。
// Get 按需物化服务对象并缓存，Release 只做句柄自身的清理；
// 从注册表中摘除请走 Discovery.Release / Discovery.Unbind。
type Reference interface {
	Record() *Record
	Get() (any, error)
	Cached() any
	Release()
}

// ReferenceFactory 按记录类型物化绑定对象的工厂
type ReferenceFactory func(d *Discovery, record *Record, config Config) (Reference, error)

var (
	typeMu       sync.RWMutex
	typeRegistry = make(map[string]ReferenceFactory)
)

// RegisterType 按类型标签注册引用工厂，通常在服务类型包的 init 中调用
func RegisterType(name string, factory ReferenceFactory) {
	typeMu.Lock()
	defer typeMu.Unlock()
	typeRegistry[name] = factory
}

func referenceFactory(name string) (ReferenceFactory, bool) {
	typeMu.RLock()
	defer typeMu.RUnlock()
	factory, ok := typeRegistry[name]
	return factory, ok
}

// BaseReference 承担具体服务类型共用的缓存与清理逻辑，
// 具体类型通过 build/cleanup 回调注入自己的物化方式。
type BaseReference struct {
	disco  *Discovery
	record *Record
	config Config

	mu      sync.Mutex
	service any
	built   bool
	build   func() (any, error)
	cleanup func(service any)
}

func NewBaseReference(d *Discovery, record *Record, config Config,
	build func() (any, error), cleanup func(service any)) *BaseReference {
	return &BaseReference{
		disco:   d,
		record:  record,
		config:  config,
		build:   build,
		cleanup: cleanup,
	}
}

func (r *BaseReference) Record() *Record {
	return r.record
}

// Config 创建引用时传入的配置
func (r *BaseReference) Config() Config {
	return r.config
}

// Get 首次调用时物化服务对象，之后返回缓存
func (r *BaseReference) Get() (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built {
		return r.service, nil
	}
	service, err := r.build()
	if err != nil {
		return nil, err
	}
	r.service = service
	r.built = true
	return service, nil
}

// Cached 返回已物化的服务对象，未物化时返回 nil
func (r *BaseReference) Cached() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.service
}

// Release 清理缓存的服务对象，可重复调用
func (r *BaseReference) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built && r.cleanup != nil {
		r.cleanup(r.service)
	}
	r.service = nil
	r.built = false
}
