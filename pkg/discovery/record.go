package discovery

// Status 服务状态
type Status string

const (
	StatusUp           Status = "UP"
	StatusDown         Status = "DOWN"
	StatusOutOfService Status = "OUT_OF_SERVICE"
	StatusUnknown      Status = "UNKNOWN"
)

// Config 自由格式配置（backend、bridge、reference 通用）
type Config map[string]any

// Record 描述一个可发现的服务实例。
// Registration 由 backend 持久化时分配，分配后不再变化。
type Record struct {
	Registration string         `json:"registration,omitempty"`
	Name         string         `json:"name"`
	Type         string         `json:"type,omitempty"`
	Status       Status         `json:"status,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Location     map[string]any `json:"location,omitempty"`
}

// Copy 返回记录的副本（顶层 map 复制）
func (r *Record) Copy() *Record {
	if r == nil {
		return nil
	}
	dup := &Record{
		Registration: r.Registration,
		Name:         r.Name,
		Type:         r.Type,
		Status:       r.Status,
	}
	if r.Metadata != nil {
		dup.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			dup.Metadata[k] = v
		}
	}
	if r.Location != nil {
		dup.Location = make(map[string]any, len(r.Location))
		for k, v := range r.Location {
			dup.Location[k] = v
		}
	}
	return dup
}

// Match 按结构化过滤条件匹配记录。
// name/type/registration/status 匹配对应字段，其余 key 匹配 Metadata；
// 过滤值 "*" 只要求字段存在。
func (r *Record) Match(filter map[string]any) bool {
	for key, expected := range filter {
		switch key {
		case "name":
			if !matchValue(r.Name, expected) {
				return false
			}
		case "type":
			if !matchValue(r.Type, expected) {
				return false
			}
		case "registration":
			if !matchValue(r.Registration, expected) {
				return false
			}
		case "status":
			if !matchValue(string(r.Status), expected) {
				return false
			}
		default:
			actual, ok := r.Metadata[key]
			if !ok {
				return false
			}
			if expected == "*" {
				continue
			}
			if actual != expected {
				return false
			}
		}
	}
	return true
}

func matchValue(actual string, expected any) bool {
	if expected == "*" {
		return actual != ""
	}
	s, ok := expected.(string)
	if !ok {
		return false
	}
	return actual == s
}
