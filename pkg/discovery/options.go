package discovery

// Identity 进程所在节点身份，集群部署时由外部注入
type Identity interface {
	Clustered() bool
	NodeID() string
}

// LocalIdentity 单机身份，NodeID 固定为 localhost
type LocalIdentity struct{}

func (LocalIdentity) Clustered() bool { return false }
func (LocalIdentity) NodeID() string  { return "localhost" }

// StaticIdentity 固定节点标识的集群身份
type StaticIdentity string

func (s StaticIdentity) Clustered() bool { return true }
func (s StaticIdentity) NodeID() string  { return string(s) }

// Options 注册表配置
type Options struct {
	// Name 实例名，为空时退化为节点标识（集群）或 localhost
	Name string `mapstructure:"name" json:"name"`
	// AnnounceAddress 记录生命周期事件的广播地址
	AnnounceAddress string `mapstructure:"announceAddress" json:"announceAddress"`
	// UsageAddress bind/release 事件的广播地址，为空表示不发 usage 事件
	UsageAddress string `mapstructure:"usageAddress" json:"usageAddress"`
	// Backend backend 名称，为空时按注册顺序取第一个，最终回退内存实现
	Backend string `mapstructure:"backend" json:"backend"`
	// BackendConfig 透传给 Backend.Init 的配置
	BackendConfig Config `mapstructure:"backendConfig" json:"backendConfig"`
	// Identity 节点身份提供者，不经配置文件加载
	Identity Identity `mapstructure:"-" json:"-"`
}

func DefaultOptions() *Options {
	return &Options{
		AnnounceAddress: "disco.announce",
		UsageAddress:    "disco.usage",
	}
}

func (o *Options) instanceID() string {
	if o.Name != "" {
		return o.Name
	}
	if o.Identity != nil && o.Identity.Clustered() {
		return o.Identity.NodeID()
	}
	return "localhost"
}
