package errs

const (
	ErrorInternal      = 500000 //系统异常
	ErrorArgs          = 500001 //参数错误
	ErrorNotFound      = 500002 //记录不存在
	ErrorBackend       = 500010 //后端存储异常
	ErrorBackendConfig = 500011 //后端配置错误
	ErrorNoFactory     = 500012 //服务类型未注册
	ErrorBridge        = 500013 //桥接组件异常
)
